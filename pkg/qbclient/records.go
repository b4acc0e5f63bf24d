package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// QueryRecords выполняет POST /records/query. Пагинация — забота вызывающего
// (Options.Skip/Top); результат возвращается как прислала платформа, без
// дополнительной сортировки и преобразования значений.
func (c *Client) QueryRecords(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if req.From == "" {
		return nil, validationError("query: table id is required")
	}
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "records/query", nil, req, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("query records of table %q: %w", req.From, err)
	}
	return &resp, nil
}

// QueryAllRecords обходит результат запроса с автоматической пагинацией,
// вызывая fn для каждой записи. fn возвращает false для остановки обхода.
func (c *Client) QueryAllRecords(ctx context.Context, req QueryRequest, pageSize int, fn func(Record) bool) error {
	if pageSize <= 0 || pageSize > MaxRecordsPerRequest {
		pageSize = MaxRecordsPerRequest
	}
	skip := 0
	for {
		req.Options = &QueryOptions{Skip: skip, Top: pageSize}
		resp, err := c.QueryRecords(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return nil
		}
		for _, rec := range resp.Data {
			if !fn(rec) {
				return nil
			}
		}
		if len(resp.Data) < pageSize {
			return nil
		}
		skip += pageSize
	}
}

// UpsertRecords вставляет и/или обновляет записи (POST /records).
//
// Каждая запись — map fid → сырое значение; конверт {"value": ...} клиент
// добавляет сам. Запись, чьё значение mergeFieldID совпало с существующей
// записью, обновляется на месте; остальные вставляются.
func (c *Client) UpsertRecords(ctx context.Context, tableID string, records []map[int]any, mergeFieldID int, fieldsToReturn []int) (*UpsertResult, error) {
	if len(records) == 0 {
		return nil, validationError("upsert: empty record list")
	}

	data := make([]map[string]Value, 0, len(records))
	for _, rec := range records {
		wrapped := make(map[string]Value, len(rec))
		for fid, v := range rec {
			wrapped[strconv.Itoa(fid)] = Value{Value: v}
		}
		data = append(data, wrapped)
	}

	payload := map[string]any{
		"to":           tableID,
		"data":         data,
		"mergeFieldId": mergeFieldID,
	}
	if len(fieldsToReturn) > 0 {
		payload["fieldsToReturn"] = fieldsToReturn
	}

	var result UpsertResult
	if err := c.do(ctx, http.MethodPost, "records", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("upsert into table %q: %w", tableID, err)
	}
	return &result, nil
}

// DeleteRecords удаляет все записи таблицы, подходящие под фильтр
// (DELETE /records). Фильтр, покрывающий всё, удалит всё — страховки
// «обязателен WHERE» на этом уровне нет, она живёт в слое трансляции.
func (c *Client) DeleteRecords(ctx context.Context, tableID, where string) (*DeleteResult, error) {
	if where == "" {
		return nil, validationError("delete records: filter expression is required")
	}
	payload := map[string]any{"from": tableID, "where": where}
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, "records", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete records of table %q: %w", tableID, err)
	}
	return &result, nil
}

// RunFormula выполняет формулу платформы (POST /formula/run).
func (c *Client) RunFormula(ctx context.Context, tableID, formula string, recordID int) (map[string]any, error) {
	payload := map[string]any{"from": tableID, "formula": formula}
	if recordID > 0 {
		payload["rid"] = recordID
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "formula/run", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("run formula on table %q: %w", tableID, err)
	}
	return result, nil
}
