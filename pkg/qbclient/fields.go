package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetFields возвращает все поля таблицы и перезаписывает schema-кеш таблицы.
func (c *Client) GetFields(ctx context.Context, tableID string) ([]Field, error) {
	var fields []Field
	params := url.Values{"tableId": {tableID}}
	if err := c.do(ctx, http.MethodGet, "fields", params, nil, &fields, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get fields of table %q: %w", tableID, err)
	}
	c.schema.PutFields(tableID, fields)
	return fields, nil
}

// GetField возвращает свойства одного поля.
func (c *Client) GetField(ctx context.Context, tableID string, fieldID int) (*Field, error) {
	var field Field
	params := url.Values{"tableId": {tableID}}
	endpoint := "fields/" + strconv.Itoa(fieldID)
	if err := c.do(ctx, http.MethodGet, endpoint, params, nil, &field, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get field %d of table %q: %w", fieldID, tableID, err)
	}
	return &field, nil
}

// CreateField создает поле в таблице и инвалидирует её schema-кеш.
// props — дополнительные свойства payload-а (properties, required и т.п.).
func (c *Client) CreateField(ctx context.Context, tableID, label string, fieldType FieldType, props map[string]any) (*Field, error) {
	payload := map[string]any{
		"label":     label,
		"fieldType": string(fieldType),
	}
	for k, v := range props {
		payload[k] = v
	}
	var field Field
	params := url.Values{"tableId": {tableID}}
	if err := c.do(ctx, http.MethodPost, "fields", params, payload, &field, reqOpts{}); err != nil {
		return nil, fmt.Errorf("create field %q in table %q: %w", label, tableID, err)
	}
	c.schema.InvalidateTable(tableID)
	c.invalidateResponses(ctx)
	return &field, nil
}

// UpdateField обновляет свойства поля (включая метку) и инвалидирует
// schema-кеш таблицы.
func (c *Client) UpdateField(ctx context.Context, tableID string, fieldID int, updates map[string]any) (*Field, error) {
	var field Field
	params := url.Values{"tableId": {tableID}}
	endpoint := "fields/" + strconv.Itoa(fieldID)
	if err := c.do(ctx, http.MethodPost, endpoint, params, updates, &field, reqOpts{}); err != nil {
		return nil, fmt.Errorf("update field %d of table %q: %w", fieldID, tableID, err)
	}
	c.schema.InvalidateTable(tableID)
	c.invalidateResponses(ctx)
	return &field, nil
}

// DeleteFields удаляет поля таблицы и инвалидирует её schema-кеш.
func (c *Client) DeleteFields(ctx context.Context, tableID string, fieldIDs []int) (map[string]any, error) {
	if len(fieldIDs) == 0 {
		return nil, validationError("delete fields: empty field id list")
	}
	var result map[string]any
	params := url.Values{"tableId": {tableID}}
	payload := map[string]any{"fieldIds": fieldIDs}
	if err := c.do(ctx, http.MethodDelete, "fields", params, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete fields %v of table %q: %w", fieldIDs, tableID, err)
	}
	c.schema.InvalidateTable(tableID)
	c.invalidateResponses(ctx)
	return result, nil
}

// GetFieldUsage возвращает статистику использования одного поля.
func (c *Client) GetFieldUsage(ctx context.Context, tableID string, fieldID int) (map[string]any, error) {
	var result map[string]any
	params := url.Values{"tableId": {tableID}}
	endpoint := "fields/usage/" + strconv.Itoa(fieldID)
	if err := c.do(ctx, http.MethodGet, endpoint, params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get usage of field %d: %w", fieldID, err)
	}
	return result, nil
}

// GetFieldsUsage возвращает статистику использования всех полей таблицы.
func (c *Client) GetFieldsUsage(ctx context.Context, tableID string, skip, top int) ([]map[string]any, error) {
	params := url.Values{"tableId": {tableID}}
	if skip > 0 {
		params.Set("skip", strconv.Itoa(skip))
	}
	if top > 0 {
		params.Set("top", strconv.Itoa(top))
	}
	var result []map[string]any
	if err := c.do(ctx, http.MethodGet, "fields/usage", params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get fields usage of table %q: %w", tableID, err)
	}
	return result, nil
}

// ResolveFieldID переводит метку поля в fid (регистронезависимо).
// Промах кеша перечитывает список полей таблицы; если метка не найдена
// и после этого — возвращает ErrNotFound.
func (c *Client) ResolveFieldID(ctx context.Context, tableID, label string) (int, error) {
	if id, ok := c.schema.FieldID(tableID, label); ok {
		return id, nil
	}

	if _, err := c.GetFields(ctx, tableID); err != nil {
		return 0, err
	}

	if id, ok := c.schema.FieldID(tableID, label); ok {
		return id, nil
	}
	return 0, fmt.Errorf("field %q not found in table %q: %w", label, tableID, ErrNotFound)
}

// ResolveFieldLabel — обратное направление: fid → метка поля.
func (c *Client) ResolveFieldLabel(ctx context.Context, tableID string, fieldID int) (string, error) {
	if ts, ok := c.schema.Table(tableID); ok {
		if label, ok := ts.IDToLabel[fieldID]; ok {
			return label, nil
		}
	}

	if _, err := c.GetFields(ctx, tableID); err != nil {
		return "", err
	}

	if ts, ok := c.schema.Table(tableID); ok {
		if label, ok := ts.IDToLabel[fieldID]; ok {
			return label, nil
		}
	}
	return "", fmt.Errorf("field %d not found in table %q: %w", fieldID, tableID, ErrNotFound)
}

// ListFieldIDs возвращает fid всех полей таблицы в порядке списка полей.
// Использует schema-кеш; промах загружает поля.
func (c *Client) ListFieldIDs(ctx context.Context, tableID string) ([]int, error) {
	if ts, ok := c.schema.Table(tableID); ok {
		return append([]int(nil), ts.FieldIDs...), nil
	}
	if _, err := c.GetFields(ctx, tableID); err != nil {
		return nil, err
	}
	ts, ok := c.schema.Table(tableID)
	if !ok {
		return nil, fmt.Errorf("no fields for table %q: %w", tableID, ErrNotFound)
	}
	return append([]int(nil), ts.FieldIDs...), nil
}
