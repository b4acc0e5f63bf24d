// Package qbsql транслирует подмножество SQL в вызовы REST API QuickBase.
//
// Поддерживаются SELECT, INSERT, UPDATE, DELETE, CREATE TABLE, ALTER TABLE
// и DROP TABLE над одной таблицей, без JOIN, подзапросов и транзакций.
// Имена таблиц и колонок из SQL переводятся в id платформы через кеш схемы
// клиента, сами операторы распознаются анкерованными регулярными выражениями
// (полноценного SQL-парсера здесь нет и не планируется).
package qbsql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
)

// Translator выполняет SQL-операторы против приложения QuickBase.
// Безопасен для конкурентного использования в той же мере, что и клиент.
type Translator struct {
	client *qbclient.Client
	strict bool
}

// Options — настройки транслятора.
type Options struct {
	// StrictTypes запрещает молчаливый маппинг нераспознанных SQL-типов
	// в text при CREATE TABLE / ALTER TABLE ADD COLUMN.
	StrictTypes bool
}

// New создает транслятор поверх готового клиента.
func New(client *qbclient.Client, opts Options) *Translator {
	return &Translator{client: client, strict: opts.StrictTypes}
}

// Execute разбирает и выполняет один SQL-оператор.
//
// Тип результата зависит от оператора: *qbclient.QueryResponse для SELECT,
// *qbclient.UpsertResult для INSERT/UPDATE, *qbclient.DeleteResult для
// DELETE, *CreateTableResult для CREATE TABLE, *qbclient.Table для
// ALTER TABLE RENAME TO, *qbclient.Field для операций над колонками.
func (t *Translator) Execute(ctx context.Context, sql string) (any, error) {
	stmt, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *SelectStatement:
		return t.execSelect(ctx, s)
	case *InsertStatement:
		return t.execInsert(ctx, s)
	case *UpdateStatement:
		return t.execUpdate(ctx, s)
	case *DeleteStatement:
		return t.execDelete(ctx, s)
	case *CreateTableStatement:
		return t.execCreateTable(ctx, s)
	case *AlterRenameTable:
		return t.execRenameTable(ctx, s)
	case *AlterAddColumn:
		return t.execAddColumn(ctx, s)
	case *AlterDropColumn:
		return t.execDropColumn(ctx, s)
	case *AlterRenameColumn:
		return t.execRenameColumn(ctx, s)
	case *DropTableStatement:
		return t.execDropTable(ctx, s)
	default:
		return nil, validationError("unhandled statement type %T", stmt)
	}
}

// Query выполняет SELECT; на любой другой оператор возвращает ошибку
// валидации. Удобно для вызывающих, которым нужен типизированный результат.
func (t *Translator) Query(ctx context.Context, sql string) (*qbclient.QueryResponse, error) {
	stmt, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*SelectStatement)
	if !ok {
		return nil, validationError("Query accepts only SELECT statements")
	}
	return t.execSelect(ctx, sel)
}

// fieldResolver возвращает замыкание имя колонки → fid для таблицы.
func (t *Translator) fieldResolver(ctx context.Context, tableID string) func(string) (int, error) {
	return func(label string) (int, error) {
		return t.client.ResolveFieldID(ctx, tableID, label)
	}
}

func (t *Translator) execSelect(ctx context.Context, stmt *SelectStatement) (*qbclient.QueryResponse, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}

	req := qbclient.QueryRequest{From: tableID}

	if stmt.Star {
		req.Select, err = t.client.ListFieldIDs(ctx, tableID)
		if err != nil {
			return nil, err
		}
	} else {
		for _, col := range stmt.Columns {
			fid, err := t.client.ResolveFieldID(ctx, tableID, col)
			if err != nil {
				return nil, err
			}
			req.Select = append(req.Select, fid)
		}
	}

	req.Where, err = translateWhere(stmt.Where, t.fieldResolver(ctx, tableID))
	if err != nil {
		return nil, err
	}

	for _, ob := range stmt.OrderBy {
		fid, err := t.client.ResolveFieldID(ctx, tableID, ob.Column)
		if err != nil {
			return nil, err
		}
		req.SortBy = append(req.SortBy, qbclient.SortBy{FieldID: fid, Order: ob.Direction})
	}

	if stmt.Top != nil || stmt.Skip != nil {
		opts := &qbclient.QueryOptions{}
		if stmt.Top != nil {
			opts.Top = *stmt.Top
		}
		if stmt.Skip != nil {
			opts.Skip = *stmt.Skip
		}
		req.Options = opts
	}

	return t.client.QueryRecords(ctx, req)
}

func (t *Translator) execInsert(ctx context.Context, stmt *InsertStatement) (*qbclient.UpsertResult, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}

	record := make(map[int]any, len(stmt.Columns))
	for i, col := range stmt.Columns {
		fid, err := t.client.ResolveFieldID(ctx, tableID, col)
		if err != nil {
			return nil, err
		}
		record[fid] = stmt.Values[i]
	}

	return t.client.UpsertRecords(ctx, tableID, []map[int]any{record}, qbclient.RecordIDField, nil)
}

// execUpdate работает в два этапа: сначала SELECT record id по WHERE,
// затем upsert с merge по record id. Пустая выборка — корректный no-op.
func (t *Translator) execUpdate(ctx context.Context, stmt *UpdateStatement) (*qbclient.UpsertResult, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}

	assignments := make(map[int]any, len(stmt.Assignments))
	for _, a := range stmt.Assignments {
		fid, err := t.client.ResolveFieldID(ctx, tableID, a.Column)
		if err != nil {
			return nil, err
		}
		if fid == qbclient.RecordIDField {
			return nil, validationError("cannot assign to record id field %q", a.Column)
		}
		assignments[fid] = a.Value
	}

	where, err := translateWhere(stmt.Where, t.fieldResolver(ctx, tableID))
	if err != nil {
		return nil, err
	}

	matched, err := t.client.QueryRecords(ctx, qbclient.QueryRequest{
		From:   tableID,
		Select: []int{qbclient.RecordIDField},
		Where:  where,
	})
	if err != nil {
		return nil, err
	}
	if len(matched.Data) == 0 {
		return &qbclient.UpsertResult{}, nil
	}

	ridKey := strconv.Itoa(qbclient.RecordIDField)
	records := make([]map[int]any, 0, len(matched.Data))
	for _, rec := range matched.Data {
		update := make(map[int]any, len(assignments)+1)
		update[qbclient.RecordIDField] = rec[ridKey].Value
		for fid, v := range assignments {
			update[fid] = v
		}
		records = append(records, update)
	}

	return t.client.UpsertRecords(ctx, tableID, records, qbclient.RecordIDField, nil)
}

func (t *Translator) execDelete(ctx context.Context, stmt *DeleteStatement) (*qbclient.DeleteResult, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	where, err := translateWhere(stmt.Where, t.fieldResolver(ctx, tableID))
	if err != nil {
		return nil, err
	}
	return t.client.DeleteRecords(ctx, tableID, where)
}

// execCreateTable создает таблицу, затем поля по одному. Отказ на поле
// не откатывает таблицу — ошибка сообщает, что уже создано.
func (t *Translator) execCreateTable(ctx context.Context, stmt *CreateTableStatement) (*CreateTableResult, error) {
	// Типы проверяются до создания таблицы, чтобы строгий режим
	// не оставлял за собой пустую таблицу
	types := make([]qbclient.FieldType, len(stmt.Columns))
	for i, col := range stmt.Columns {
		ft, err := fieldTypeForSQL(col.RawType, t.strict)
		if err != nil {
			return nil, err
		}
		types[i] = ft
	}

	table, err := t.client.CreateTable(ctx, "", stmt.Table, nil)
	if err != nil {
		return nil, err
	}

	result := &CreateTableResult{Table: table}
	for i, col := range stmt.Columns {
		field, err := t.client.CreateField(ctx, table.ID, col.Name, types[i], nil)
		if err != nil {
			return result, fmt.Errorf("table %q created (id %s) but column %q failed: %w",
				stmt.Table, table.ID, col.Name, err)
		}
		result.Fields = append(result.Fields, field)
	}
	return result, nil
}

func (t *Translator) execRenameTable(ctx context.Context, stmt *AlterRenameTable) (*qbclient.Table, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	return t.client.UpdateTable(ctx, tableID, "", map[string]any{"name": stmt.NewName})
}

func (t *Translator) execAddColumn(ctx context.Context, stmt *AlterAddColumn) (*qbclient.Field, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	ft, err := fieldTypeForSQL(stmt.Column.RawType, t.strict)
	if err != nil {
		return nil, err
	}
	return t.client.CreateField(ctx, tableID, stmt.Column.Name, ft, nil)
}

func (t *Translator) execDropColumn(ctx context.Context, stmt *AlterDropColumn) (map[string]any, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	fid, err := t.client.ResolveFieldID(ctx, tableID, stmt.Column)
	if err != nil {
		return nil, err
	}
	return t.client.DeleteFields(ctx, tableID, []int{fid})
}

func (t *Translator) execRenameColumn(ctx context.Context, stmt *AlterRenameColumn) (*qbclient.Field, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	fid, err := t.client.ResolveFieldID(ctx, tableID, stmt.OldName)
	if err != nil {
		return nil, err
	}
	return t.client.UpdateField(ctx, tableID, fid, map[string]any{"label": stmt.NewName})
}

func (t *Translator) execDropTable(ctx context.Context, stmt *DropTableStatement) (map[string]any, error) {
	tableID, err := t.client.ResolveTableID(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	return t.client.DeleteTable(ctx, tableID, "")
}
