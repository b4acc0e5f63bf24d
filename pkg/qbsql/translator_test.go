package qbsql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
)

// fakePlatform — минимальный сервер метаданных и записей для сквозных
// тестов транслятора. Захватывает тела запросов для проверки.
type fakePlatform struct {
	t *testing.T

	queryRequests  []qbclient.QueryRequest
	upsertPayloads []map[string]any
	deletePayloads []map[string]any
	fieldPayloads  []map[string]any
	tablePayloads  []map[string]any
	deletedTables  []string
	deletedFields  []map[string]any

	queryResponses []qbclient.QueryResponse
}

func (p *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /tables", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]qbclient.Table{{ID: "bqtbl1", Name: "Customers"}})
	})
	mux.HandleFunc("POST /tables", func(w http.ResponseWriter, r *http.Request) {
		p.tablePayloads = append(p.tablePayloads, decodeMap(p.t, r))
		_ = json.NewEncoder(w).Encode(qbclient.Table{ID: "bqnew1", Name: "Tasks"})
	})
	mux.HandleFunc("POST /tables/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.tablePayloads = append(p.tablePayloads, decodeMap(p.t, r))
		_ = json.NewEncoder(w).Encode(qbclient.Table{ID: r.PathValue("id")})
	})
	mux.HandleFunc("DELETE /tables/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.deletedTables = append(p.deletedTables, r.PathValue("id"))
		_ = json.NewEncoder(w).Encode(map[string]any{"deletedTableId": r.PathValue("id")})
	})

	mux.HandleFunc("GET /fields", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]qbclient.Field{
			{ID: 3, Label: "Record ID#", FieldType: qbclient.FieldTypeNumeric},
			{ID: 6, Label: "Name", FieldType: qbclient.FieldTypeText},
			{ID: 7, Label: "Revenue", FieldType: qbclient.FieldTypeNumeric},
			{ID: 8, Label: "Status", FieldType: qbclient.FieldTypeText},
		})
	})
	mux.HandleFunc("POST /fields", func(w http.ResponseWriter, r *http.Request) {
		payload := decodeMap(p.t, r)
		p.fieldPayloads = append(p.fieldPayloads, payload)
		_ = json.NewEncoder(w).Encode(qbclient.Field{ID: 9, Label: payload["label"].(string)})
	})
	mux.HandleFunc("POST /fields/{id}", func(w http.ResponseWriter, r *http.Request) {
		payload := decodeMap(p.t, r)
		payload["_fieldId"] = r.PathValue("id")
		p.fieldPayloads = append(p.fieldPayloads, payload)
		_ = json.NewEncoder(w).Encode(qbclient.Field{ID: 7})
	})
	mux.HandleFunc("DELETE /fields", func(w http.ResponseWriter, r *http.Request) {
		p.deletedFields = append(p.deletedFields, decodeMap(p.t, r))
		_ = json.NewEncoder(w).Encode(map[string]any{"deletedFieldIds": []int{7}})
	})

	mux.HandleFunc("POST /records/query", func(w http.ResponseWriter, r *http.Request) {
		var req qbclient.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			p.t.Errorf("decode query request: %v", err)
		}
		p.queryRequests = append(p.queryRequests, req)

		resp := qbclient.QueryResponse{}
		if len(p.queryResponses) > 0 {
			resp = p.queryResponses[0]
			p.queryResponses = p.queryResponses[1:]
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /records", func(w http.ResponseWriter, r *http.Request) {
		p.upsertPayloads = append(p.upsertPayloads, decodeMap(p.t, r))
		_ = json.NewEncoder(w).Encode(qbclient.UpsertResult{
			Metadata: qbclient.UpsertMetadata{CreatedRecordIDs: []int{1}},
		})
	})
	mux.HandleFunc("DELETE /records", func(w http.ResponseWriter, r *http.Request) {
		p.deletePayloads = append(p.deletePayloads, decodeMap(p.t, r))
		_ = json.NewEncoder(w).Encode(qbclient.DeleteResult{NumberDeleted: 2})
	})

	return mux
}

func decodeMap(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		t.Errorf("decode payload: %v", err)
	}
	return m
}

func newTestTranslator(t *testing.T, opts Options) (*Translator, *fakePlatform) {
	t.Helper()
	platform := &fakePlatform{t: t}
	server := httptest.NewServer(platform.handler())
	t.Cleanup(server.Close)

	client, err := qbclient.New(qbclient.Config{
		Token:   "test-token",
		Realm:   "test.quickbase.com",
		AppID:   "bqtest123",
		BaseURL: server.URL,
		Retry:   qbclient.RetryConfig{MaxAttempts: 1, InitialDelay: 0.001},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return New(client, opts), platform
}

// --- SELECT ---

func TestTranslator_Select(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	_, err := tr.Execute(context.Background(),
		"SELECT Name, Revenue FROM Customers WHERE {'Status'.EX.'active'} ORDER BY Revenue DESC LIMIT 10")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(platform.queryRequests) != 1 {
		t.Fatalf("query requests = %d", len(platform.queryRequests))
	}
	req := platform.queryRequests[0]
	if req.From != "bqtbl1" {
		t.Errorf("From = %q", req.From)
	}
	if !reflect.DeepEqual(req.Select, []int{6, 7}) {
		t.Errorf("Select = %v, want [6 7]", req.Select)
	}
	if req.Where != "{8.EX.'active'}" {
		t.Errorf("Where = %q", req.Where)
	}
	if len(req.SortBy) != 1 || req.SortBy[0].FieldID != 7 || req.SortBy[0].Order != "DESC" {
		t.Errorf("SortBy = %+v", req.SortBy)
	}
	if req.Options == nil || req.Options.Top != 10 {
		t.Errorf("Options = %+v", req.Options)
	}
}

func TestTranslator_SelectStarExpandsAllFields(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	if _, err := tr.Execute(context.Background(), "SELECT * FROM Customers"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	req := platform.queryRequests[0]
	if !reflect.DeepEqual(req.Select, []int{3, 6, 7, 8}) {
		t.Errorf("Select = %v, want all fields in order", req.Select)
	}
}

func TestTranslator_SelectUnknownTable(t *testing.T) {
	tr, _ := newTestTranslator(t, Options{})

	_, err := tr.Execute(context.Background(), "SELECT * FROM Unknown")
	if !errors.Is(err, qbclient.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// --- INSERT ---

func TestTranslator_Insert(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	_, err := tr.Execute(context.Background(),
		"INSERT INTO Customers (Name, Status) VALUES ('Acme', 'active')")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(platform.upsertPayloads) != 1 {
		t.Fatalf("upserts = %d", len(platform.upsertPayloads))
	}
	payload := platform.upsertPayloads[0]
	if payload["to"] != "bqtbl1" {
		t.Errorf("to = %v", payload["to"])
	}
	if payload["mergeFieldId"] != float64(qbclient.RecordIDField) {
		t.Errorf("mergeFieldId = %v", payload["mergeFieldId"])
	}
	data := payload["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data rows = %d", len(data))
	}
	row := data[0].(map[string]any)
	if row["6"].(map[string]any)["value"] != "Acme" {
		t.Errorf(`row["6"] = %v`, row["6"])
	}
	if row["8"].(map[string]any)["value"] != "active" {
		t.Errorf(`row["8"] = %v`, row["8"])
	}
}

func TestTranslator_InsertCountMismatchBeforeNetwork(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	_, err := tr.Execute(context.Background(), "INSERT INTO Customers (Name, Status) VALUES ('Acme')")
	if !errors.Is(err, qbclient.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(platform.upsertPayloads)+len(platform.queryRequests) != 0 {
		t.Error("validation must fail before any network call")
	}
}

// --- UPDATE ---

func TestTranslator_UpdateTwoPhase(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})
	platform.queryResponses = []qbclient.QueryResponse{{
		Data: []qbclient.Record{
			{"3": qbclient.Value{Value: float64(11)}},
			{"3": qbclient.Value{Value: float64(12)}},
		},
	}}

	_, err := tr.Execute(context.Background(),
		"UPDATE Customers SET Status = 'closed' WHERE {'Revenue'.LT.'100'}")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Фаза 1: выборка только record id по транслированному фильтру
	if len(platform.queryRequests) != 1 {
		t.Fatalf("query requests = %d", len(platform.queryRequests))
	}
	q := platform.queryRequests[0]
	if !reflect.DeepEqual(q.Select, []int{qbclient.RecordIDField}) {
		t.Errorf("phase 1 Select = %v", q.Select)
	}
	if q.Where != "{7.LT.'100'}" {
		t.Errorf("phase 1 Where = %q", q.Where)
	}

	// Фаза 2: upsert c merge по record id
	if len(platform.upsertPayloads) != 1 {
		t.Fatalf("upserts = %d", len(platform.upsertPayloads))
	}
	payload := platform.upsertPayloads[0]
	data := payload["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("update rows = %d, want 2", len(data))
	}
	for _, raw := range data {
		row := raw.(map[string]any)
		if _, ok := row["3"]; !ok {
			t.Error("update row without record id")
		}
		if row["8"].(map[string]any)["value"] != "closed" {
			t.Errorf("row status = %v", row["8"])
		}
	}
}

func TestTranslator_UpdateNoMatchesIsNoop(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})
	// queryResponses пуст — фаза 1 вернёт ноль записей

	result, err := tr.Execute(context.Background(),
		"UPDATE Customers SET Status = 'closed' WHERE {'Revenue'.LT.'0'}")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(platform.upsertPayloads) != 0 {
		t.Error("no-op update must not call upsert")
	}
	upsert := result.(*qbclient.UpsertResult)
	if upsert.Metadata.TotalNumberOfRecords != 0 {
		t.Errorf("affected = %d, want 0", upsert.Metadata.TotalNumberOfRecords)
	}
}

func TestTranslator_UpdateRecordIDRejected(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	_, err := tr.Execute(context.Background(),
		"UPDATE Customers SET 'Record ID#' = '99' WHERE {'Revenue'.GT.'0'}")
	if !errors.Is(err, qbclient.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(platform.upsertPayloads)+len(platform.queryRequests) != 0 {
		t.Error("rejected update must not reach records endpoints")
	}
}

// --- DELETE ---

func TestTranslator_Delete(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	result, err := tr.Execute(context.Background(),
		"DELETE FROM Customers WHERE {'Status'.EX.'stale'}")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(platform.deletePayloads) != 1 {
		t.Fatalf("deletes = %d", len(platform.deletePayloads))
	}
	payload := platform.deletePayloads[0]
	if payload["from"] != "bqtbl1" {
		t.Errorf("from = %v", payload["from"])
	}
	if payload["where"] != "{8.EX.'stale'}" {
		t.Errorf("where = %v", payload["where"])
	}
	if result.(*qbclient.DeleteResult).NumberDeleted != 2 {
		t.Errorf("NumberDeleted = %d", result.(*qbclient.DeleteResult).NumberDeleted)
	}
}

// --- CREATE TABLE ---

func TestTranslator_CreateTable(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	result, err := tr.Execute(context.Background(),
		"CREATE TABLE Tasks (Title text, Due date, Score int, Done bool, Blob geometry)")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	created := result.(*CreateTableResult)
	if created.Table.ID != "bqnew1" {
		t.Errorf("table id = %q", created.Table.ID)
	}
	if len(created.Fields) != 5 {
		t.Errorf("fields created = %d", len(created.Fields))
	}

	wantTypes := []string{"text", "date", "numeric", "checkbox", "text"}
	if len(platform.fieldPayloads) != len(wantTypes) {
		t.Fatalf("field payloads = %d", len(platform.fieldPayloads))
	}
	for i, want := range wantTypes {
		if got := platform.fieldPayloads[i]["fieldType"]; got != want {
			t.Errorf("field %d type = %v, want %q", i, got, want)
		}
	}
}

func TestTranslator_CreateTableStrictTypes(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{StrictTypes: true})

	_, err := tr.Execute(context.Background(), "CREATE TABLE Tasks (Blob geometry)")
	if !errors.Is(err, qbclient.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	// Строгий режим отклоняет до создания таблицы
	if len(platform.tablePayloads) != 0 {
		t.Error("strict mode must reject before creating the table")
	}
}

// --- ALTER TABLE / DROP TABLE ---

func TestTranslator_AlterRenameTable(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	if _, err := tr.Execute(context.Background(), "ALTER TABLE Customers RENAME TO Clients"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(platform.tablePayloads) != 1 || platform.tablePayloads[0]["name"] != "Clients" {
		t.Errorf("table payloads = %+v", platform.tablePayloads)
	}
}

func TestTranslator_AlterAddColumn(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	if _, err := tr.Execute(context.Background(), "ALTER TABLE Customers ADD COLUMN Priority int"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(platform.fieldPayloads) != 1 {
		t.Fatalf("field payloads = %d", len(platform.fieldPayloads))
	}
	payload := platform.fieldPayloads[0]
	if payload["label"] != "Priority" || payload["fieldType"] != "numeric" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestTranslator_AlterDropColumn(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	if _, err := tr.Execute(context.Background(), "ALTER TABLE Customers DROP COLUMN Revenue"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(platform.deletedFields) != 1 {
		t.Fatalf("deleted fields = %d", len(platform.deletedFields))
	}
	ids := platform.deletedFields[0]["fieldIds"].([]any)
	if len(ids) != 1 || ids[0] != float64(7) {
		t.Errorf("fieldIds = %v, want [7]", ids)
	}
}

func TestTranslator_AlterRenameColumn(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	if _, err := tr.Execute(context.Background(), "ALTER TABLE Customers RENAME COLUMN Revenue TO Income"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(platform.fieldPayloads) != 1 {
		t.Fatalf("field payloads = %d", len(platform.fieldPayloads))
	}
	payload := platform.fieldPayloads[0]
	if payload["label"] != "Income" || payload["_fieldId"] != "7" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestTranslator_DropTable(t *testing.T) {
	tr, platform := newTestTranslator(t, Options{})

	if _, err := tr.Execute(context.Background(), "DROP TABLE Customers"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(platform.deletedTables) != 1 || platform.deletedTables[0] != "bqtbl1" {
		t.Errorf("deleted tables = %v", platform.deletedTables)
	}
}

// --- Query ---

func TestTranslator_QueryRejectsNonSelect(t *testing.T) {
	tr, _ := newTestTranslator(t, Options{})

	_, err := tr.Query(context.Background(), "DROP TABLE Customers")
	if !errors.Is(err, qbclient.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "SELECT") {
		t.Errorf("error text = %q", err.Error())
	}
}
