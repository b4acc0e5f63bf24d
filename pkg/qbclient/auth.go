package qbclient

import (
	"context"
	"fmt"
	"net/http"
)

// GetTempToken получает временный токен, ограниченный приложением или таблицей.
func (c *Client) GetTempToken(ctx context.Context, dbid string) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "auth/temporary/"+dbid, nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get temp token for %q: %w", dbid, err)
	}
	return result, nil
}

// ExchangeSSOToken обменивает SAML assertion на токен платформы.
func (c *Client) ExchangeSSOToken(ctx context.Context, subjectToken string) (map[string]any, error) {
	payload := map[string]any{
		"grant_type":           "urn:ietf:params:oauth:grant-type:token-exchange",
		"requested_token_type": "urn:quickbase:params:oauth:token-type:temp_token",
		"subject_token":        subjectToken,
		"subject_token_type":   "urn:ietf:params:oauth:token-type:saml2",
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "auth/oauth/token", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("exchange sso token: %w", err)
	}
	return result, nil
}

// CloneUserToken клонирует текущий user token.
func (c *Client) CloneUserToken(ctx context.Context, name, description string) (map[string]any, error) {
	payload := map[string]any{"name": name}
	if description != "" {
		payload["description"] = description
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "usertoken/clone", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("clone user token: %w", err)
	}
	return result, nil
}

// DeactivateUserToken деактивирует текущий user token.
func (c *Client) DeactivateUserToken(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "usertoken/deactivate", nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("deactivate user token: %w", err)
	}
	return result, nil
}

// DeleteUserToken удаляет текущий user token.
func (c *Client) DeleteUserToken(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodDelete, "usertoken", nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete user token: %w", err)
	}
	return result, nil
}

// TransferUserToken передаёт user token другому пользователю.
func (c *Client) TransferUserToken(ctx context.Context, tokenID int, fromUserID, toUserID string) (map[string]any, error) {
	payload := map[string]any{"id": tokenID, "from": fromUserID, "to": toUserID}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "usertoken/transfer", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("transfer user token %d: %w", tokenID, err)
	}
	return result, nil
}
