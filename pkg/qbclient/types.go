package qbclient

// Системные поля QuickBase. Присутствуют в каждой таблице и не удаляются.
//
// Инвариант платформы: Record ID# (fid 3) назначается платформой, уникален
// в пределах таблицы и неизменяем — на этом построена merge-семантика upsert.
const (
	RecordIDField       = 3 // Record ID#
	DateCreatedField    = 1
	DateModifiedField   = 2
	RecordOwnerField    = 4
	LastModifiedByField = 5
)

// Лимиты API.
const (
	MaxRecordsPerRequest = 1000
	MaxPayloadSizeMB     = 40
)

// FieldType — тип поля QuickBase (значение fieldType в API).
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumeric     FieldType = "numeric"
	FieldTypeDate        FieldType = "date"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeDuration    FieldType = "duration"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeUser        FieldType = "user"
	FieldTypeEmail       FieldType = "email"
	FieldTypeURL         FieldType = "url"
	FieldTypePhone       FieldType = "phone"
	FieldTypeRichText    FieldType = "rich-text"
	FieldTypeFile        FieldType = "file"
	FieldTypeLookup      FieldType = "lookup"
	FieldTypeSummary     FieldType = "summary"
	FieldTypeFormula     FieldType = "formula"
	FieldTypeMultiSelect FieldType = "text-multiple-choice"
	FieldTypeMultiUser   FieldType = "multiuser"
	FieldTypeAddress     FieldType = "address"
)

// Операторы фильтров платформы, используются в выражениях {fid.OP.'value'}.
const (
	OpEqual          = "EX"
	OpNotEqual       = "XEX"
	OpTrueValue      = "TV"
	OpContains       = "CT"
	OpNotContains    = "XCT"
	OpStartsWith     = "SW"
	OpNotStartsWith  = "XSW"
	OpGreaterThan    = "GT"
	OpGreaterOrEqual = "GTE"
	OpLessThan       = "LT"
	OpLessOrEqual    = "LTE"
	OpBefore         = "BF"
	OpOnOrBefore     = "OBF"
	OpAfter          = "AF"
	OpOnOrAfter      = "OAF"
)

// Table — метаданные таблицы приложения.
type Table struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Alias       string `json:"alias,omitempty"`
	Description string `json:"description,omitempty"`
}

// Field — метаданные поля таблицы.
type Field struct {
	ID        int       `json:"id"`
	Label     string    `json:"label"`
	FieldType FieldType `json:"fieldType"`
	Required  bool      `json:"required,omitempty"`
	Unique    bool      `json:"unique,omitempty"`
}

// Value — конверт значения: каждое значение в API обёрнуто как {"value": ...}.
type Value struct {
	Value any `json:"value"`
}

// Record — запись в ответе API: fid (строкой) → значение в конверте.
type Record map[string]Value

// SortBy — элемент сортировки запроса.
type SortBy struct {
	FieldID int    `json:"fieldId"`
	Order   string `json:"order"` // "ASC" | "DESC"
}

// GroupBy — элемент группировки запроса.
type GroupBy struct {
	FieldID  int    `json:"fieldId"`
	Grouping string `json:"grouping"`
}

// QueryOptions — параметры пагинации запроса.
type QueryOptions struct {
	Skip                    int  `json:"skip,omitempty"`
	Top                     int  `json:"top,omitempty"`
	CompareWithAppLocalTime bool `json:"compareWithAppLocalTime,omitempty"`
}

// QueryRequest — тело POST /records/query.
type QueryRequest struct {
	From    string        `json:"from"`
	Select  []int         `json:"select,omitempty"`
	Where   string        `json:"where,omitempty"`
	SortBy  []SortBy      `json:"sortBy,omitempty"`
	GroupBy []GroupBy     `json:"groupBy,omitempty"`
	Options *QueryOptions `json:"options,omitempty"`
}

// FieldRef — описание поля в метаданных ответа запроса.
type FieldRef struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// QueryMetadata — метаданные ответа запроса.
type QueryMetadata struct {
	NumFields    int `json:"numFields"`
	NumRecords   int `json:"numRecords"`
	Skip         int `json:"skip"`
	TotalRecords int `json:"totalRecords"`
}

// QueryResponse — ответ POST /records/query. Данные возвращаются как есть,
// без преобразования типов значений.
type QueryResponse struct {
	Data     []Record      `json:"data"`
	Fields   []FieldRef    `json:"fields"`
	Metadata QueryMetadata `json:"metadata"`
}

// UpsertMetadata — метаданные ответа upsert.
type UpsertMetadata struct {
	CreatedRecordIDs     []int               `json:"createdRecordIds"`
	UpdatedRecordIDs     []int               `json:"updatedRecordIds"`
	UnchangedRecordIDs   []int               `json:"unchangedRecordIds"`
	TotalNumberOfRecords int                 `json:"totalNumberOfRecordsProcessed"`
	LineErrors           map[string][]string `json:"lineErrors,omitempty"`
}

// UpsertResult — ответ POST /records.
type UpsertResult struct {
	Data     []Record       `json:"data"`
	Metadata UpsertMetadata `json:"metadata"`
}

// DeleteResult — ответ DELETE /records.
type DeleteResult struct {
	NumberDeleted int `json:"numberDeleted"`
}
