package qbclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// --- SchemaCache ---

func TestSchemaCache_TableLookupCaseInsensitive(t *testing.T) {
	s := NewSchemaCache()
	s.PutTables([]Table{{ID: "bqtbl1", Name: "Projects"}})

	for _, name := range []string{"Projects", "projects", "PROJECTS"} {
		id, ok := s.TableID(name)
		if !ok || id != "bqtbl1" {
			t.Errorf("TableID(%q) = %q, %v", name, id, ok)
		}
	}
	if _, ok := s.TableID("Tasks"); ok {
		t.Error("TableID(Tasks): expected miss")
	}
}

func TestSchemaCache_FieldLookupBothDirections(t *testing.T) {
	s := NewSchemaCache()
	s.PutFields("bqtbl1", []Field{
		{ID: 3, Label: "Record ID#"},
		{ID: 6, Label: "Full Name"},
	})

	fid, ok := s.FieldID("bqtbl1", "full name")
	if !ok || fid != 6 {
		t.Errorf("FieldID = %d, %v", fid, ok)
	}

	ts, ok := s.Table("bqtbl1")
	if !ok {
		t.Fatal("Table(): expected hit")
	}
	if ts.IDToLabel[6] != "Full Name" {
		t.Errorf("IDToLabel[6] = %q", ts.IDToLabel[6])
	}
	if len(ts.FieldIDs) != 2 || ts.FieldIDs[0] != 3 || ts.FieldIDs[1] != 6 {
		t.Errorf("FieldIDs = %v, want [3 6]", ts.FieldIDs)
	}
}

func TestSchemaCache_Invalidation(t *testing.T) {
	s := NewSchemaCache()
	s.PutTables([]Table{{ID: "bqtbl1", Name: "Projects"}})
	s.PutFields("bqtbl1", []Field{{ID: 6, Label: "Name"}})

	s.InvalidateTable("bqtbl1")
	if _, ok := s.FieldID("bqtbl1", "Name"); ok {
		t.Error("FieldID after InvalidateTable: expected miss")
	}

	s.InvalidateTableList()
	if _, ok := s.TableID("Projects"); ok {
		t.Error("TableID after InvalidateTableList: expected miss")
	}
}

// --- ResolveTableID ---

func TestResolveTableID_MissTriggersRefetch(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode([]Table{{ID: "bqtbl1", Name: "Projects"}})
	}))
	defer server.Close()

	c := newTestClient(t, server)
	ctx := context.Background()

	id, err := c.ResolveTableID(ctx, "projects")
	if err != nil {
		t.Fatalf("ResolveTableID() error = %v", err)
	}
	if id != "bqtbl1" {
		t.Errorf("id = %q, want bqtbl1", id)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}

	// Второе разрешение идет из кеша
	if _, err := c.ResolveTableID(ctx, "Projects"); err != nil {
		t.Fatalf("second ResolveTableID() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (cached)", calls.Load())
	}
}

func TestResolveTableID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Table{{ID: "bqtbl1", Name: "Projects"}})
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ResolveTableID(context.Background(), "Unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// --- ResolveFieldID / ResolveFieldLabel ---

func fieldsServer(t *testing.T, calls *atomic.Int32, fields []Field) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(fields)
	}))
}

func TestResolveFieldID_RoundTrip(t *testing.T) {
	var calls atomic.Int32
	server := fieldsServer(t, &calls, []Field{
		{ID: 3, Label: "Record ID#", FieldType: FieldTypeNumeric},
		{ID: 6, Label: "Customer Name", FieldType: FieldTypeText},
	})
	defer server.Close()

	c := newTestClient(t, server)
	ctx := context.Background()

	fid, err := c.ResolveFieldID(ctx, "bqtbl1", "customer name")
	if err != nil {
		t.Fatalf("ResolveFieldID() error = %v", err)
	}
	if fid != 6 {
		t.Errorf("fid = %d, want 6", fid)
	}

	label, err := c.ResolveFieldLabel(ctx, "bqtbl1", 6)
	if err != nil {
		t.Fatalf("ResolveFieldLabel() error = %v", err)
	}
	if label != "Customer Name" {
		t.Errorf("label = %q", label)
	}

	// Оба разрешения из одной загрузки полей
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestResolveFieldID_NotFound(t *testing.T) {
	var calls atomic.Int32
	server := fieldsServer(t, &calls, []Field{{ID: 6, Label: "Name"}})
	defer server.Close()

	_, err := newTestClient(t, server).ResolveFieldID(context.Background(), "bqtbl1", "Missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListFieldIDs_PreservesOrder(t *testing.T) {
	var calls atomic.Int32
	server := fieldsServer(t, &calls, []Field{
		{ID: 3, Label: "Record ID#"},
		{ID: 7, Label: "B"},
		{ID: 6, Label: "A"},
	})
	defer server.Close()

	ids, err := newTestClient(t, server).ListFieldIDs(context.Background(), "bqtbl1")
	if err != nil {
		t.Fatalf("ListFieldIDs() error = %v", err)
	}
	want := []int{3, 7, 6}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

// --- schema invalidation after mutations ---

func TestDeleteFields_InvalidatesSchemaCache(t *testing.T) {
	var fieldCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fieldCalls.Add(1)
			_ = json.NewEncoder(w).Encode([]Field{{ID: 6, Label: "Name"}})
		case http.MethodDelete:
			_ = json.NewEncoder(w).Encode(map[string]any{"deletedFieldIds": []int{7}})
		}
	}))
	defer server.Close()

	c := newTestClient(t, server)
	ctx := context.Background()

	if _, err := c.ResolveFieldID(ctx, "bqtbl1", "Name"); err != nil {
		t.Fatalf("ResolveFieldID() error = %v", err)
	}
	if _, err := c.DeleteFields(ctx, "bqtbl1", []int{7}); err != nil {
		t.Fatalf("DeleteFields() error = %v", err)
	}

	// После мутации следующее разрешение перечитывает поля
	if _, err := c.ResolveFieldID(ctx, "bqtbl1", "Name"); err != nil {
		t.Fatalf("ResolveFieldID() after delete error = %v", err)
	}
	if got := fieldCalls.Load(); got != 2 {
		t.Errorf("field fetches = %d, want 2 (cache invalidated)", got)
	}
}
