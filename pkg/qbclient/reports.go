package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetReports возвращает схемы всех отчётов таблицы.
func (c *Client) GetReports(ctx context.Context, tableID string) ([]map[string]any, error) {
	var result []map[string]any
	params := url.Values{"tableId": {tableID}}
	if err := c.do(ctx, http.MethodGet, "reports", params, nil, &result, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get reports of table %q: %w", tableID, err)
	}
	return result, nil
}

// GetReport возвращает схему одного отчёта.
func (c *Client) GetReport(ctx context.Context, tableID string, reportID int) (map[string]any, error) {
	var result map[string]any
	params := url.Values{"tableId": {tableID}}
	if err := c.do(ctx, http.MethodGet, "reports/"+strconv.Itoa(reportID), params, nil, &result, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get report %d: %w", reportID, err)
	}
	return result, nil
}

// RunReport выполняет отчёт и возвращает его данные. Агрегации настраиваются
// в самом отчёте на платформе — SQL-слой их не поддерживает.
func (c *Client) RunReport(ctx context.Context, tableID string, reportID, skip, top int) (*QueryResponse, error) {
	params := url.Values{"tableId": {tableID}}
	if skip > 0 {
		params.Set("skip", strconv.Itoa(skip))
	}
	if top > 0 {
		params.Set("top", strconv.Itoa(top))
	}
	var result QueryResponse
	endpoint := "reports/" + strconv.Itoa(reportID) + "/run"
	if err := c.do(ctx, http.MethodPost, endpoint, params, map[string]any{}, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("run report %d: %w", reportID, err)
	}
	return &result, nil
}

// GetRelationships возвращает связи таблицы.
func (c *Client) GetRelationships(ctx context.Context, tableID string, skip int) (map[string]any, error) {
	params := url.Values{}
	if skip > 0 {
		params.Set("skip", strconv.Itoa(skip))
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "tables/"+tableID+"/relationships", params, nil, &result, reqOpts{useCache: true}); err != nil {
		return nil, fmt.Errorf("get relationships of table %q: %w", tableID, err)
	}
	return result, nil
}

// CreateRelationship создает связь child-таблицы с parent-таблицей.
func (c *Client) CreateRelationship(ctx context.Context, childTableID, parentTableID string, props map[string]any) (map[string]any, error) {
	payload := map[string]any{"parentTableId": parentTableID}
	for k, v := range props {
		payload[k] = v
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "tables/"+childTableID+"/relationship", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("create relationship %q -> %q: %w", childTableID, parentTableID, err)
	}
	c.schema.InvalidateTable(childTableID)
	return result, nil
}

// UpdateRelationship добавляет lookup/summary поля к существующей связи.
func (c *Client) UpdateRelationship(ctx context.Context, childTableID string, relationshipID int, updates map[string]any) (map[string]any, error) {
	var result map[string]any
	endpoint := "tables/" + childTableID + "/relationship/" + strconv.Itoa(relationshipID)
	if err := c.do(ctx, http.MethodPost, endpoint, nil, updates, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("update relationship %d: %w", relationshipID, err)
	}
	c.schema.InvalidateTable(childTableID)
	return result, nil
}

// DeleteRelationship удаляет связь целиком.
func (c *Client) DeleteRelationship(ctx context.Context, childTableID string, relationshipID int) (map[string]any, error) {
	var result map[string]any
	endpoint := "tables/" + childTableID + "/relationship/" + strconv.Itoa(relationshipID)
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete relationship %d: %w", relationshipID, err)
	}
	c.schema.InvalidateTable(childTableID)
	return result, nil
}
