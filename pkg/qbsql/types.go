package qbsql

import (
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
)

// sqlFieldTypes — маппинг SQL-типов в типы полей платформы.
// Скобочные модификаторы (varchar(255)) игнорируются.
var sqlFieldTypes = map[string]qbclient.FieldType{
	"text":      qbclient.FieldTypeText,
	"varchar":   qbclient.FieldTypeText,
	"char":      qbclient.FieldTypeText,
	"int":       qbclient.FieldTypeNumeric,
	"integer":   qbclient.FieldTypeNumeric,
	"number":    qbclient.FieldTypeNumeric,
	"numeric":   qbclient.FieldTypeNumeric,
	"float":     qbclient.FieldTypeNumeric,
	"date":      qbclient.FieldTypeDate,
	"datetime":  qbclient.FieldTypeDatetime,
	"timestamp": qbclient.FieldTypeDatetime,
	"bool":      qbclient.FieldTypeCheckbox,
	"boolean":   qbclient.FieldTypeCheckbox,
}

// fieldTypeForSQL возвращает тип поля для SQL-типа. Нераспознанный тип
// в мягком режиме становится text, в строгом — ошибкой валидации.
func fieldTypeForSQL(raw string, strict bool) (qbclient.FieldType, error) {
	name := strings.ToLower(raw)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	if ft, ok := sqlFieldTypes[name]; ok {
		return ft, nil
	}
	if strict {
		return "", validationError("unknown SQL type %q", raw)
	}
	return qbclient.FieldTypeText, nil
}

// CreateTableResult — итог CREATE TABLE: созданная таблица и её поля.
type CreateTableResult struct {
	Table  *qbclient.Table
	Fields []*qbclient.Field
}
