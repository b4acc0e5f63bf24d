package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AuditLogsRequest — параметры выборки audit-логов за один день.
type AuditLogsRequest struct {
	Date      string   // "YYYY-MM-DD"
	Topics    []string
	NumRows   int
	NextToken string
	QueryID   string
}

// GetAuditLogs возвращает audit-логи realm-а за один день.
func (c *Client) GetAuditLogs(ctx context.Context, req AuditLogsRequest) (map[string]any, error) {
	if req.Date == "" {
		return nil, validationError("audit logs: date is required")
	}
	payload := map[string]any{"date": req.Date}
	if len(req.Topics) > 0 {
		payload["topics"] = req.Topics
	}
	if req.NumRows > 0 {
		payload["numRows"] = req.NumRows
	}
	if req.NextToken != "" {
		payload["nextToken"] = req.NextToken
	}
	if req.QueryID != "" {
		payload["queryId"] = req.QueryID
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "audit", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get audit logs for %s: %w", req.Date, err)
	}
	return result, nil
}

// GetReadSummaries возвращает сводки чтений за прошедший день.
func (c *Client) GetReadSummaries(ctx context.Context, day string) (map[string]any, error) {
	params := url.Values{"day": {day}}
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "analytics/reads", params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get read summaries for %s: %w", day, err)
	}
	return result, nil
}

// EventSummariesRequest — параметры сводки событий за интервал.
type EventSummariesRequest struct {
	Start     string
	End       string
	GroupBy   string
	AccountID int
	NextToken string
	Where     []map[string]any
}

// GetEventSummaries возвращает сводки событий платформы за интервал.
func (c *Client) GetEventSummaries(ctx context.Context, req EventSummariesRequest) (map[string]any, error) {
	params := url.Values{}
	if req.AccountID > 0 {
		params.Set("accountId", strconv.Itoa(req.AccountID))
	}
	payload := map[string]any{"start": req.Start, "end": req.End, "groupBy": req.GroupBy}
	if req.NextToken != "" {
		payload["nextToken"] = req.NextToken
	}
	if len(req.Where) > 0 {
		payload["where"] = req.Where
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "analytics/events/summaries", params, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get event summaries: %w", err)
	}
	return result, nil
}
