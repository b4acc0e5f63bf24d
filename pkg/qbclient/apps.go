package qbclient

import (
	"context"
	"fmt"
	"net/http"
)

// GetApp возвращает основные свойства приложения, включая его переменные.
func (c *Client) GetApp(ctx context.Context, appID string) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "apps/"+appID, nil, nil, &result, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get app %q: %w", appID, err)
	}
	return result, nil
}

// CreateAppOptions — необязательные свойства нового приложения.
type CreateAppOptions struct {
	Description        string
	AssignToken        bool
	Variables          []map[string]any
	SecurityProperties map[string]any
}

// CreateApp создает приложение в аккаунте.
func (c *Client) CreateApp(ctx context.Context, name string, opts *CreateAppOptions) (map[string]any, error) {
	payload := map[string]any{"name": name}
	if opts != nil {
		payload["assignToken"] = opts.AssignToken
		if opts.Description != "" {
			payload["description"] = opts.Description
		}
		if len(opts.Variables) > 0 {
			payload["variables"] = opts.Variables
		}
		if opts.SecurityProperties != nil {
			payload["securityProperties"] = opts.SecurityProperties
		}
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "apps", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("create app %q: %w", name, err)
	}
	return result, nil
}

// UpdateApp обновляет свойства и/или переменные приложения.
func (c *Client) UpdateApp(ctx context.Context, appID string, updates map[string]any) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "apps/"+appID, nil, updates, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("update app %q: %w", appID, err)
	}
	return result, nil
}

// CopyApp копирует приложение.
func (c *Client) CopyApp(ctx context.Context, appID, name, description string, properties map[string]any) (map[string]any, error) {
	payload := map[string]any{"name": name}
	if description != "" {
		payload["description"] = description
	}
	if properties != nil {
		payload["properties"] = properties
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "apps/"+appID+"/copy", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("copy app %q: %w", appID, err)
	}
	return result, nil
}

// DeleteApp удаляет приложение целиком, со всеми таблицами и данными.
// Платформа требует повторить имя приложения как подтверждение.
func (c *Client) DeleteApp(ctx context.Context, appID, name string) (map[string]any, error) {
	var result map[string]any
	payload := map[string]any{"name": name}
	if err := c.do(ctx, http.MethodDelete, "apps/"+appID, nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete app %q: %w", appID, err)
	}
	c.schema.Clear()
	return result, nil
}

// GetAppEvents возвращает список событий, которые могут срабатывать в приложении.
func (c *Client) GetAppEvents(ctx context.Context, appID string) ([]map[string]any, error) {
	var result []map[string]any
	if err := c.do(ctx, http.MethodGet, "apps/"+appID+"/events", nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get events of app %q: %w", appID, err)
	}
	return result, nil
}
