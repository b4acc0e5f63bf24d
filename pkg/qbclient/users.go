package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// UsersFilter — параметры выборки пользователей аккаунта.
type UsersFilter struct {
	AccountID     int
	Emails        []string
	AppIDs        []string
	NextPageToken string
}

// GetUsers возвращает пользователей аккаунта (опционально отфильтрованных).
func (c *Client) GetUsers(ctx context.Context, filter *UsersFilter) (map[string]any, error) {
	params := url.Values{}
	payload := map[string]any{}
	if filter != nil {
		if filter.AccountID > 0 {
			params.Set("accountId", strconv.Itoa(filter.AccountID))
		}
		if len(filter.Emails) > 0 {
			payload["emails"] = filter.Emails
		}
		if len(filter.AppIDs) > 0 {
			payload["appIds"] = filter.AppIDs
		}
		if filter.NextPageToken != "" {
			payload["nextPageToken"] = filter.NextPageToken
		}
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "users", params, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return result, nil
}

// DenyUsers запрещает пользователям доступ к realm-у; deleteFromGroups
// дополнительно удаляет их из групп.
func (c *Client) DenyUsers(ctx context.Context, userIDs []string, accountID int, deleteFromGroups bool) (map[string]any, error) {
	params := url.Values{}
	if accountID > 0 {
		params.Set("accountId", strconv.Itoa(accountID))
	}
	endpoint := "users/deny"
	if deleteFromGroups {
		endpoint += "/true"
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPut, endpoint, params, userIDs, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("deny users: %w", err)
	}
	return result, nil
}

// UndenyUsers возвращает доступ ранее заблокированным пользователям.
func (c *Client) UndenyUsers(ctx context.Context, userIDs []string, accountID int) (map[string]any, error) {
	params := url.Values{}
	if accountID > 0 {
		params.Set("accountId", strconv.Itoa(accountID))
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPut, "users/undeny", params, userIDs, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("undeny users: %w", err)
	}
	return result, nil
}

// groupOp — общий хелпер для операций над составом группы.
func (c *Client) groupOp(ctx context.Context, method string, groupID int, kind string, ids []string) (map[string]any, error) {
	var result map[string]any
	endpoint := "groups/" + strconv.Itoa(groupID) + "/" + kind
	if err := c.do(ctx, method, endpoint, nil, ids, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("%s %s of group %d: %w", method, kind, groupID, err)
	}
	return result, nil
}

// AddGroupMembers добавляет пользователей в группу как участников.
func (c *Client) AddGroupMembers(ctx context.Context, groupID int, userIDs []string) (map[string]any, error) {
	return c.groupOp(ctx, http.MethodPost, groupID, "members", userIDs)
}

// RemoveGroupMembers удаляет участников из группы.
func (c *Client) RemoveGroupMembers(ctx context.Context, groupID int, userIDs []string) (map[string]any, error) {
	return c.groupOp(ctx, http.MethodDelete, groupID, "members", userIDs)
}

// AddGroupManagers добавляет пользователей в группу как менеджеров.
func (c *Client) AddGroupManagers(ctx context.Context, groupID int, userIDs []string) (map[string]any, error) {
	return c.groupOp(ctx, http.MethodPost, groupID, "managers", userIDs)
}

// RemoveGroupManagers удаляет менеджеров из группы.
func (c *Client) RemoveGroupManagers(ctx context.Context, groupID int, userIDs []string) (map[string]any, error) {
	return c.groupOp(ctx, http.MethodDelete, groupID, "managers", userIDs)
}

// AddSubgroups добавляет подгруппы в группу.
func (c *Client) AddSubgroups(ctx context.Context, groupID int, subgroupIDs []string) (map[string]any, error) {
	return c.groupOp(ctx, http.MethodPost, groupID, "subgroups", subgroupIDs)
}

// RemoveSubgroups удаляет подгруппы из группы.
func (c *Client) RemoveSubgroups(ctx context.Context, groupID int, subgroupIDs []string) (map[string]any, error) {
	return c.groupOp(ctx, http.MethodDelete, groupID, "subgroups", subgroupIDs)
}
