package qbclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// fileEndpoint строит путь files/{table}/{record}/{field}/{version}.
func fileEndpoint(tableID string, recordID, fieldID, version int) string {
	return "files/" + tableID + "/" + strconv.Itoa(recordID) + "/" +
		strconv.Itoa(fieldID) + "/" + strconv.Itoa(version)
}

// UploadFile загружает вложение из локального файла.
func (c *Client) UploadFile(ctx context.Context, tableID string, recordID, fieldID int, path string) (*UpsertResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, validationError("file not found: %s", path)
	}
	return c.UploadFileBytes(ctx, tableID, recordID, fieldID, filepath.Base(path), data)
}

// UploadFileBytes загружает вложение из памяти через records endpoint:
// содержимое кодируется base64 и кладётся в конверт значения файлового поля.
func (c *Client) UploadFileBytes(ctx context.Context, tableID string, recordID, fieldID int, fileName string, data []byte) (*UpsertResult, error) {
	if len(data) > MaxPayloadSizeMB*1024*1024 {
		return nil, validationError("file size exceeds the %dMB limit", MaxPayloadSizeMB)
	}

	record := map[string]Value{
		strconv.Itoa(RecordIDField): {Value: recordID},
		strconv.Itoa(fieldID): {Value: map[string]string{
			"fileName": fileName,
			"data":     base64.StdEncoding.EncodeToString(data),
		}},
	}
	payload := map[string]any{"to": tableID, "data": []map[string]Value{record}}

	var result UpsertResult
	if err := c.do(ctx, http.MethodPost, "records", nil, payload, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("upload file %q: %w", fileName, err)
	}
	return &result, nil
}

// DownloadFile скачивает содержимое версии вложения как сырые байты.
func (c *Client) DownloadFile(ctx context.Context, tableID string, recordID, fieldID, version int) ([]byte, error) {
	data, err := c.doRequest(ctx, http.MethodGet, fileEndpoint(tableID, recordID, fieldID, version), nil, nil, reqOpts{})
	if err != nil {
		return nil, fmt.Errorf("download file (record %d, field %d): %w", recordID, fieldID, err)
	}
	return data, nil
}

// DeleteFile удаляет одну версию вложения.
func (c *Client) DeleteFile(ctx context.Context, tableID string, recordID, fieldID, version int) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodDelete, fileEndpoint(tableID, recordID, fieldID, version), nil, nil, &result, reqOpts{}); err != nil {
		return nil, fmt.Errorf("delete file (record %d, field %d): %w", recordID, fieldID, err)
	}
	return result, nil
}
