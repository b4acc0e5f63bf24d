// Package snapshot выгружает результаты запросов в локальную SQLite-базу.
//
// Снимок — обычный файл SQLite: одна таблица на выгрузку, колонки по меткам
// полей, типы приближены к типам платформы. Удобен для офлайн-анализа
// и передачи данных без доступа к API.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
	_ "modernc.org/sqlite"
)

const driverSqlite = "sqlite"

// Writer пишет снимки в один файл SQLite. Не потокобезопасен.
type Writer struct {
	db *sql.DB
}

// Open открывает (или создает) файл снимка и применяет PRAGMA-оптимизации
// для массовой записи.
func Open(ctx context.Context, filePath string) (*Writer, error) {
	db, err := sql.Open(driverSqlite, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL + NORMAL дают кратное ускорение массовых INSERT без потери
	// целостности; temp_store в памяти избавляет от лишнего диска
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &Writer{db: db}, nil
}

// Close закрывает файл снимка.
func (w *Writer) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// Write сохраняет результат запроса как таблицу снимка. Существующая
// таблица с тем же именем перезаписывается целиком: снимок отражает
// состояние на момент выгрузки, а не историю.
func (w *Writer) Write(ctx context.Context, tableName string, resp *qbclient.QueryResponse) error {
	if len(resp.Fields) == 0 {
		return fmt.Errorf("response has no field metadata")
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	quoted := quoteIdent(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return fmt.Errorf("failed to drop old snapshot table: %w", err)
	}

	cols := make([]string, 0, len(resp.Fields))
	placeholders := make([]string, 0, len(resp.Fields))
	for _, field := range resp.Fields {
		cols = append(cols, quoteIdent(field.Label)+" "+sqliteType(field.Type))
		placeholders = append(placeholders, "?")
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", quoted, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoted, strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range resp.Data {
		args := make([]any, 0, len(resp.Fields))
		for _, field := range resp.Fields {
			v, ok := rec[strconv.Itoa(field.ID)]
			if !ok {
				args = append(args, nil)
				continue
			}
			args = append(args, columnValue(v.Value))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// sqliteType приближает тип поля платформы к типу колонки SQLite.
func sqliteType(fieldType string) string {
	switch fieldType {
	case "numeric", "duration":
		return "REAL"
	case "checkbox":
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// columnValue приводит значение из JSON-конверта к типу, пригодному
// для database/sql.
func columnValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return 1
		}
		return 0
	case float64, string:
		return val
	case map[string]any:
		// user/address приходят объектами, в снимок идет display name
		if name, ok := val["name"].(string); ok {
			return name
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// quoteIdent экранирует идентификатор SQLite двойными кавычками.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
