package qbclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gopkg.in/yaml.v3"
)

const yamlContentType = "application/x-yaml"

// validateQBL проверяет, что QBL-документ — синтаксически корректный YAML,
// до отправки на платформу.
func validateQBL(qbl string) error {
	var doc any
	if err := yaml.Unmarshal([]byte(qbl), &doc); err != nil {
		return validationError("invalid QBL document: %v", err)
	}
	return nil
}

// ExportSolution возвращает QBL-описание решения.
func (c *Client) ExportSolution(ctx context.Context, solutionID, qblVersion string) (string, error) {
	opts := reqOpts{}
	if qblVersion != "" {
		opts.headers = map[string]string{"QBL-Version": qblVersion}
	}
	data, err := c.doRequest(ctx, http.MethodGet, "solutions/"+solutionID, nil, nil, opts)
	if err != nil {
		return "", fmt.Errorf("export solution %q: %w", solutionID, err)
	}
	return string(data), nil
}

// CreateSolution создает решение из QBL-документа.
func (c *Client) CreateSolution(ctx context.Context, qbl string) (map[string]any, error) {
	if err := validateQBL(qbl); err != nil {
		return nil, err
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "solutions", nil, qbl, &result, reqOpts{contentType: yamlContentType}); err != nil {
		return nil, fmt.Errorf("create solution: %w", err)
	}
	return result, nil
}

// UpdateSolution обновляет решение по QBL-документу.
func (c *Client) UpdateSolution(ctx context.Context, solutionID, qbl string) (map[string]any, error) {
	if err := validateQBL(qbl); err != nil {
		return nil, err
	}
	var result map[string]any
	if err := c.do(ctx, http.MethodPut, "solutions/"+solutionID, nil, qbl, &result, reqOpts{contentType: yamlContentType}); err != nil {
		return nil, fmt.Errorf("update solution %q: %w", solutionID, err)
	}
	return result, nil
}

// ListSolutionChanges возвращает изменения, которые применил бы данный QBL.
func (c *Client) ListSolutionChanges(ctx context.Context, solutionID, qbl string) (map[string]any, error) {
	if err := validateQBL(qbl); err != nil {
		return nil, err
	}
	var result map[string]any
	endpoint := "solutions/" + solutionID + "/changeset"
	if err := c.do(ctx, http.MethodPut, endpoint, nil, qbl, &result, reqOpts{contentType: yamlContentType}); err != nil {
		return nil, fmt.Errorf("list changes of solution %q: %w", solutionID, err)
	}
	return result, nil
}

// recordRefParams — общие параметры для операций solution-from-record.
func recordRefParams(tableID string, recordID, fieldID int) url.Values {
	params := url.Values{"tableId": {tableID}, "fieldId": {strconv.Itoa(fieldID)}}
	if recordID > 0 {
		params.Set("recordId", strconv.Itoa(recordID))
	}
	return params
}

// ExportSolutionToRecord выгружает QBL решения в новую запись таблицы.
func (c *Client) ExportSolutionToRecord(ctx context.Context, solutionID, tableID string, fieldID int, qblVersion string) (map[string]any, error) {
	opts := reqOpts{}
	if qblVersion != "" {
		opts.headers = map[string]string{"QBL-Version": qblVersion}
	}
	params := recordRefParams(tableID, 0, fieldID)
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "solutions/"+solutionID+"/torecord", params, nil, &result, opts); err != nil {
		return nil, fmt.Errorf("export solution %q to record: %w", solutionID, err)
	}
	return result, nil
}

// CreateSolutionFromRecord создает решение из QBL, хранящегося в записи.
func (c *Client) CreateSolutionFromRecord(ctx context.Context, tableID string, recordID, fieldID int) (map[string]any, error) {
	params := recordRefParams(tableID, recordID, fieldID)
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "solutions/fromrecord", params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("create solution from record %d: %w", recordID, err)
	}
	return result, nil
}

// UpdateSolutionFromRecord обновляет решение из QBL, хранящегося в записи.
func (c *Client) UpdateSolutionFromRecord(ctx context.Context, solutionID, tableID string, recordID, fieldID int) (map[string]any, error) {
	params := recordRefParams(tableID, recordID, fieldID)
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "solutions/"+solutionID+"/fromrecord", params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("update solution %q from record %d: %w", solutionID, recordID, err)
	}
	return result, nil
}

// ListSolutionChangesFromRecord возвращает изменения по QBL из записи.
func (c *Client) ListSolutionChangesFromRecord(ctx context.Context, solutionID, tableID string, recordID, fieldID int) (map[string]any, error) {
	params := recordRefParams(tableID, recordID, fieldID)
	var result map[string]any
	endpoint := "solutions/" + solutionID + "/changeset/fromrecord"
	if err := c.do(ctx, http.MethodGet, endpoint, params, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("list changes of solution %q from record %d: %w", solutionID, recordID, err)
	}
	return result, nil
}

// GetSolutionInfo возвращает метаданные и ресурсы решения.
func (c *Client) GetSolutionInfo(ctx context.Context, solutionID string) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "solutions/"+solutionID+"/resources", nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("get solution %q info: %w", solutionID, err)
	}
	return result, nil
}

// GenerateDocumentOptions — параметры генерации документа по шаблону.
type GenerateDocumentOptions struct {
	RecordID    int
	Format      string // "pdf" по умолчанию
	RawBytes    bool   // true = вернуть сырой файл (Accept: application/octet-stream)
	Margin      string
	Unit        string
	PageSize    string
	Orientation string
}

// GenerateDocument генерирует документ из шаблона. При RawBytes возвращает
// содержимое файла, иначе JSON-ответ с base64-данными.
func (c *Client) GenerateDocument(ctx context.Context, templateID int, tableID, filename string, opts GenerateDocumentOptions) ([]byte, error) {
	format := opts.Format
	if format == "" {
		format = "pdf"
	}
	params := url.Values{
		"tableId":  {tableID},
		"filename": {filename},
		"format":   {format},
	}
	if opts.RecordID > 0 {
		params.Set("recordId", strconv.Itoa(opts.RecordID))
	}
	if opts.Margin != "" {
		params.Set("margin", opts.Margin)
	}
	if opts.Unit != "" {
		params.Set("unit", opts.Unit)
	}
	if opts.PageSize != "" {
		params.Set("pageSize", opts.PageSize)
	}
	if opts.Orientation != "" {
		params.Set("orientation", opts.Orientation)
	}

	accept := "application/json"
	if opts.RawBytes {
		accept = "application/octet-stream"
	}
	endpoint := "docTemplates/" + strconv.Itoa(templateID) + "/generate"
	data, err := c.doRequest(ctx, http.MethodGet, endpoint, params, nil, reqOpts{headers: map[string]string{"Accept": accept}})
	if err != nil {
		return nil, fmt.Errorf("generate document from template %d: %w", templateID, err)
	}
	return data, nil
}
