package qbclient

import (
	"strings"
	"sync"
)

// TableSchema — двунаправленное отображение полей одной таблицы.
type TableSchema struct {
	NameToID  map[string]int // lower(label) → fid
	IDToLabel map[int]string // fid → label как в API
	FieldIDs  []int          // fid в порядке списка полей таблицы
}

// SchemaCache — процессный кеш метаданных: имя таблицы → id и
// id таблицы → схема полей. Записи не истекают по времени; единственная
// дисциплина — явная инвалидация при каждой schema-мутации.
//
// Мьютекс защищает только целостность map. Координация конкурентных
// statement-ов поверх кеша остаётся на вызывающем коде.
type SchemaCache struct {
	mu     sync.Mutex
	tables map[string]string       // lower(name) → table id
	fields map[string]*TableSchema // table id → схема
}

// NewSchemaCache создает пустой кеш метаданных.
func NewSchemaCache() *SchemaCache {
	return &SchemaCache{
		tables: make(map[string]string),
		fields: make(map[string]*TableSchema),
	}
}

// TableID возвращает id таблицы по имени (регистронезависимо).
func (s *SchemaCache) TableID(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tables[strings.ToLower(name)]
	return id, ok
}

// PutTables перезаписывает отображение имён таблиц.
func (s *SchemaCache) PutTables(tables []Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]string, len(tables))
	for _, t := range tables {
		if t.Name != "" && t.ID != "" {
			s.tables[strings.ToLower(t.Name)] = t.ID
		}
	}
}

// FieldID возвращает fid поля по метке (регистронезависимо).
func (s *SchemaCache) FieldID(tableID, label string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.fields[tableID]
	if !ok {
		return 0, false
	}
	id, ok := ts.NameToID[strings.ToLower(label)]
	return id, ok
}

// Table возвращает схему полей таблицы, если она загружена.
func (s *SchemaCache) Table(tableID string) (*TableSchema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.fields[tableID]
	return ts, ok
}

// PutFields перезаписывает схему полей таблицы.
func (s *SchemaCache) PutFields(tableID string, fields []Field) {
	ts := &TableSchema{
		NameToID:  make(map[string]int, len(fields)),
		IDToLabel: make(map[int]string, len(fields)),
		FieldIDs:  make([]int, 0, len(fields)),
	}
	for _, f := range fields {
		ts.NameToID[strings.ToLower(f.Label)] = f.ID
		ts.IDToLabel[f.ID] = f.Label
		ts.FieldIDs = append(ts.FieldIDs, f.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[tableID] = ts
}

// InvalidateTable сбрасывает схему полей таблицы.
// Обязателен после create/update/delete поля и перед возвратом управления.
func (s *SchemaCache) InvalidateTable(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fields, tableID)
}

// InvalidateTableList сбрасывает отображение имён таблиц.
// Обязателен после create/rename/delete таблицы.
func (s *SchemaCache) InvalidateTableList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]string)
}

// Clear сбрасывает весь кеш метаданных.
func (s *SchemaCache) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]string)
	s.fields = make(map[string]*TableSchema)
}
