package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetTables возвращает список таблиц приложения.
// appID == "" означает приложение по умолчанию из конфигурации.
func (c *Client) GetTables(ctx context.Context, appID string) ([]Table, error) {
	appID, err := c.resolveAppID(appID)
	if err != nil {
		return nil, err
	}
	var tables []Table
	params := url.Values{"appId": {appID}}
	if err := c.do(ctx, http.MethodGet, "tables", params, nil, &tables, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get tables for app %q: %w", appID, err)
	}
	return tables, nil
}

// GetTable возвращает свойства одной таблицы.
func (c *Client) GetTable(ctx context.Context, tableID, appID string) (*Table, error) {
	appID, err := c.resolveAppID(appID)
	if err != nil {
		return nil, err
	}
	var table Table
	params := url.Values{"appId": {appID}}
	if err := c.do(ctx, http.MethodGet, "tables/"+tableID, params, nil, &table, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get table %q: %w", tableID, err)
	}
	return &table, nil
}

// CreateTableOptions — необязательные свойства новой таблицы.
type CreateTableOptions struct {
	Description      string
	SingleRecordName string
	PluralRecordName string
}

// CreateTable создает таблицу в приложении и инвалидирует кеш имён таблиц.
func (c *Client) CreateTable(ctx context.Context, appID, name string, opts *CreateTableOptions) (*Table, error) {
	appID, err := c.resolveAppID(appID)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"name": name}
	if opts != nil {
		if opts.Description != "" {
			payload["description"] = opts.Description
		}
		if opts.SingleRecordName != "" {
			payload["singleRecordName"] = opts.SingleRecordName
		}
		if opts.PluralRecordName != "" {
			payload["pluralRecordName"] = opts.PluralRecordName
		}
	}
	var table Table
	params := url.Values{"appId": {appID}}
	if err := c.do(ctx, http.MethodPost, "tables", params, payload, &table, reqOpts{}); err != nil {
		return nil, fmt.Errorf("create table %q: %w", name, err)
	}
	c.schema.InvalidateTableList()
	c.invalidateResponses(ctx)
	return &table, nil
}

// UpdateTable обновляет свойства таблицы (включая переименование)
// и инвалидирует кеш имён таблиц.
func (c *Client) UpdateTable(ctx context.Context, tableID, appID string, updates map[string]any) (*Table, error) {
	appID, err := c.resolveAppID(appID)
	if err != nil {
		return nil, err
	}
	var table Table
	params := url.Values{"appId": {appID}}
	if err := c.do(ctx, http.MethodPost, "tables/"+tableID, params, updates, &table, reqOpts{}); err != nil {
		return nil, fmt.Errorf("update table %q: %w", tableID, err)
	}
	c.schema.InvalidateTableList()
	c.invalidateResponses(ctx)
	return &table, nil
}

// DeleteTable удаляет таблицу и инвалидирует все её кешированные метаданные.
func (c *Client) DeleteTable(ctx context.Context, tableID, appID string) (map[string]any, error) {
	appID, err := c.resolveAppID(appID)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	params := url.Values{"appId": {appID}}
	if err := c.do(ctx, http.MethodDelete, "tables/"+tableID, params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete table %q: %w", tableID, err)
	}
	c.schema.InvalidateTableList()
	c.schema.InvalidateTable(tableID)
	c.invalidateResponses(ctx)
	return result, nil
}

// ResolveTableID переводит имя таблицы в её id (регистронезависимо).
// Промах кеша перечитывает список таблиц приложения; если имя не найдено
// и после этого — возвращает ErrNotFound.
func (c *Client) ResolveTableID(ctx context.Context, name string) (string, error) {
	if id, ok := c.schema.TableID(name); ok {
		return id, nil
	}

	tables, err := c.GetTables(ctx, "")
	if err != nil {
		return "", err
	}
	c.schema.PutTables(tables)

	if id, ok := c.schema.TableID(name); ok {
		return id, nil
	}
	return "", fmt.Errorf("table %q not found in app %q: %w", name, c.cfg.AppID, ErrNotFound)
}

// resolveAppID подставляет app_id по умолчанию и валидирует его наличие.
func (c *Client) resolveAppID(appID string) (string, error) {
	if appID != "" {
		return appID, nil
	}
	if c.cfg.AppID == "" {
		return "", validationError("app_id must be set in config or passed explicitly")
	}
	return c.cfg.AppID, nil
}
