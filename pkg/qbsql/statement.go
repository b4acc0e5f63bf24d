package qbsql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
)

// Statement — размеченный результат распознавания SQL-оператора.
// Диспетчер работает только с вариантами, каждая грамматика распознаётся
// собственной функцией независимо от остальных.
type Statement interface{ statement() }

// OrderByClause — элемент ORDER BY.
type OrderByClause struct {
	Column    string
	Direction string // "ASC" | "DESC"
}

// ColumnDef — объявление колонки в CREATE TABLE / ALTER TABLE ADD COLUMN.
type ColumnDef struct {
	Name    string
	RawType string // SQL-тип как написан, маппится в тип поля платформы
}

// SelectStatement — SELECT [TOP n] cols FROM table [WHERE][ORDER BY][LIMIT][OFFSET].
type SelectStatement struct {
	Table   string
	Columns []string // пустой при Star
	Star    bool
	Where   string
	OrderBy []OrderByClause
	Top     *int // TOP и LIMIT заполняют одно поле, последний выигрывает
	Skip    *int
}

// InsertStatement — INSERT INTO table (cols) VALUES (vals).
type InsertStatement struct {
	Table   string
	Columns []string
	Values  []string
}

// Assignment — пара col = value из SET.
type Assignment struct {
	Column string
	Value  string
}

// UpdateStatement — UPDATE table SET ... WHERE expr. WHERE обязателен.
type UpdateStatement struct {
	Table       string
	Assignments []Assignment
	Where       string
}

// DeleteStatement — DELETE FROM table WHERE expr. WHERE обязателен.
type DeleteStatement struct {
	Table string
	Where string
}

// CreateTableStatement — CREATE TABLE table (col type, ...).
type CreateTableStatement struct {
	Table   string
	Columns []ColumnDef
}

// AlterRenameTable — ALTER TABLE t RENAME TO new.
type AlterRenameTable struct {
	Table   string
	NewName string
}

// AlterAddColumn — ALTER TABLE t ADD COLUMN col type.
type AlterAddColumn struct {
	Table  string
	Column ColumnDef
}

// AlterDropColumn — ALTER TABLE t DROP COLUMN col.
type AlterDropColumn struct {
	Table  string
	Column string
}

// AlterRenameColumn — ALTER TABLE t RENAME COLUMN old TO new.
type AlterRenameColumn struct {
	Table   string
	OldName string
	NewName string
}

// DropTableStatement — DROP TABLE table.
type DropTableStatement struct {
	Table string
}

func (*SelectStatement) statement()      {}
func (*InsertStatement) statement()      {}
func (*UpdateStatement) statement()      {}
func (*DeleteStatement) statement()      {}
func (*CreateTableStatement) statement() {}
func (*AlterRenameTable) statement()     {}
func (*AlterAddColumn) statement()       {}
func (*AlterDropColumn) statement()      {}
func (*AlterRenameColumn) statement()    {}
func (*DropTableStatement) statement()   {}

// ident — идентификатор, опционально в одинарных/двойных/обратных кавычках.
// Ленивый квантификатор не дает имени проглотить необязательные хвостовые
// клаузы (WHERE, SET и т.п.).
const ident = `['"` + "`" + `]?[\w\s]+?['"` + "`" + `]?`

var (
	selectRe = regexp.MustCompile(`(?is)^\s*SELECT\s+(?:TOP\s+(\d+)\s+)?(.+?)\s+FROM\s+(` + ident + `)(?:\s+WHERE\s+(.+?))?(?:\s+ORDER\s+BY\s+(.+?))?(?:\s+LIMIT\s+(\d+))?(?:\s+OFFSET\s+(\d+))?\s*;?\s*$`)
	insertRe = regexp.MustCompile(`(?is)^\s*INSERT\s+INTO\s+(` + ident + `)\s*\((.+?)\)\s*VALUES\s*\((.+)\)\s*;?\s*$`)
	updateRe = regexp.MustCompile(`(?is)^\s*UPDATE\s+(` + ident + `)\s+SET\s+(.+?)(?:\s+WHERE\s+(.+?))?\s*;?\s*$`)
	deleteRe = regexp.MustCompile(`(?is)^\s*DELETE\s+FROM\s+(` + ident + `)(?:\s+WHERE\s+(.+?))?\s*;?\s*$`)
	createRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(` + ident + `)\s*\((.+)\)\s*;?\s*$`)
	dropRe   = regexp.MustCompile(`(?is)^\s*DROP\s+TABLE\s+(` + ident + `)\s*;?\s*$`)

	// Формы ALTER TABLE проверяются в фиксированном порядке;
	// выигрывает первая совпавшая.
	alterRenameTableRe  = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(` + ident + `)\s+RENAME\s+TO\s+(` + ident + `)\s*;?\s*$`)
	alterAddColumnRe    = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(` + ident + `)\s+ADD\s+COLUMN\s+(` + ident + `)\s+([\w()]+)\s*;?\s*$`)
	alterDropColumnRe   = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(` + ident + `)\s+DROP\s+COLUMN\s+(` + ident + `)\s*;?\s*$`)
	alterRenameColumnRe = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(` + ident + `)\s+RENAME\s+COLUMN\s+(` + ident + `)\s+TO\s+(` + ident + `)\s*;?\s*$`)

	// Классификация оператора по ведущему ключевому слову.
	kindSelectRe = regexp.MustCompile(`(?i)^\s*SELECT\b`)
	kindInsertRe = regexp.MustCompile(`(?i)^\s*INSERT\b`)
	kindUpdateRe = regexp.MustCompile(`(?i)^\s*UPDATE\b`)
	kindDeleteRe = regexp.MustCompile(`(?i)^\s*DELETE\b`)
	kindCreateRe = regexp.MustCompile(`(?i)^\s*CREATE\s+TABLE\b`)
	kindAlterRe  = regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE\b`)
	kindDropRe   = regexp.MustCompile(`(?i)^\s*DROP\s+TABLE\b`)
)

// Parse классифицирует SQL-оператор по ведущему ключевому слову и передаёт
// его распознавателю соответствующей грамматики.
func Parse(sql string) (Statement, error) {
	switch {
	case kindSelectRe.MatchString(sql):
		return recognizeSelect(sql)
	case kindInsertRe.MatchString(sql):
		return recognizeInsert(sql)
	case kindUpdateRe.MatchString(sql):
		return recognizeUpdate(sql)
	case kindDeleteRe.MatchString(sql):
		return recognizeDelete(sql)
	case kindCreateRe.MatchString(sql):
		return recognizeCreateTable(sql)
	case kindAlterRe.MatchString(sql):
		return recognizeAlterTable(sql)
	case kindDropRe.MatchString(sql):
		return recognizeDropTable(sql)
	default:
		return nil, validationError("unsupported SQL statement: %s", summarize(sql))
	}
}

func recognizeSelect(sql string) (*SelectStatement, error) {
	m := selectRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, validationError("invalid SELECT statement: %s", summarize(sql))
	}
	stmt := &SelectStatement{
		Table: stripQuotes(m[3]),
		Where: strings.TrimSpace(m[4]),
	}

	cols := strings.TrimSpace(m[2])
	if cols == "*" {
		stmt.Star = true
	} else {
		for _, col := range splitList(cols) {
			stmt.Columns = append(stmt.Columns, stripQuotes(col))
		}
	}

	if m[5] != "" {
		for _, clause := range strings.Split(m[5], ",") {
			col, dir := parseOrderClause(clause)
			if col == "" {
				return nil, validationError("invalid ORDER BY clause: %s", clause)
			}
			stmt.OrderBy = append(stmt.OrderBy, OrderByClause{Column: col, Direction: dir})
		}
	}

	// TOP и LIMIT — синонимы опции top; при обоих выигрывает последний (LIMIT)
	if m[1] != "" {
		n, _ := strconv.Atoi(m[1])
		stmt.Top = &n
	}
	if m[6] != "" {
		n, _ := strconv.Atoi(m[6])
		stmt.Top = &n
	}
	if m[7] != "" {
		n, _ := strconv.Atoi(m[7])
		stmt.Skip = &n
	}
	return stmt, nil
}

// parseOrderClause разбирает "col [ASC|DESC]"; направление по умолчанию ASC.
func parseOrderClause(clause string) (column, direction string) {
	tokens := strings.Fields(clause)
	if len(tokens) == 0 {
		return "", ""
	}
	direction = "ASC"
	last := strings.ToUpper(tokens[len(tokens)-1])
	if len(tokens) > 1 && (last == "ASC" || last == "DESC") {
		direction = last
		tokens = tokens[:len(tokens)-1]
	}
	return stripQuotes(strings.Join(tokens, " ")), direction
}

func recognizeInsert(sql string) (*InsertStatement, error) {
	m := insertRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, validationError("invalid INSERT statement, use `INSERT INTO table (col1, col2) VALUES ('val1', 'val2')`")
	}
	stmt := &InsertStatement{Table: stripQuotes(m[1])}
	for _, col := range splitList(m[2]) {
		stmt.Columns = append(stmt.Columns, stripQuotes(col))
	}
	for _, val := range splitList(m[3]) {
		stmt.Values = append(stmt.Values, stripQuotes(val))
	}
	// Проверка до любых сетевых вызовов
	if len(stmt.Columns) != len(stmt.Values) {
		return nil, validationError("column count (%d) does not match value count (%d)", len(stmt.Columns), len(stmt.Values))
	}
	return stmt, nil
}

func recognizeUpdate(sql string) (*UpdateStatement, error) {
	m := updateRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, validationError("invalid UPDATE statement: %s", summarize(sql))
	}
	if strings.TrimSpace(m[3]) == "" {
		return nil, validationError("UPDATE without a WHERE clause is not supported for safety")
	}
	stmt := &UpdateStatement{Table: stripQuotes(m[1]), Where: strings.TrimSpace(m[3])}
	for _, clause := range splitList(m[2]) {
		col, val, ok := strings.Cut(clause, "=")
		if !ok {
			return nil, validationError("invalid SET assignment: %s", clause)
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{
			Column: stripQuotes(strings.TrimSpace(col)),
			Value:  stripQuotes(strings.TrimSpace(val)),
		})
	}
	return stmt, nil
}

func recognizeDelete(sql string) (*DeleteStatement, error) {
	m := deleteRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, validationError("invalid DELETE statement: %s", summarize(sql))
	}
	if strings.TrimSpace(m[2]) == "" {
		return nil, validationError("DELETE without a WHERE clause is not supported for safety")
	}
	return &DeleteStatement{Table: stripQuotes(m[1]), Where: strings.TrimSpace(m[2])}, nil
}

func recognizeCreateTable(sql string) (*CreateTableStatement, error) {
	m := createRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, validationError("invalid CREATE TABLE statement: %s", summarize(sql))
	}
	stmt := &CreateTableStatement{Table: stripQuotes(m[1])}
	for _, col := range splitList(m[2]) {
		def, err := parseColumnDef(col)
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, def)
	}
	if len(stmt.Columns) == 0 {
		return nil, validationError("CREATE TABLE requires at least one column")
	}
	return stmt, nil
}

// parseColumnDef разбирает "name type"; имя может быть квотированным
// и содержать пробелы, тип — последний токен.
func parseColumnDef(def string) (ColumnDef, error) {
	tokens := strings.Fields(def)
	if len(tokens) < 2 {
		return ColumnDef{}, validationError("column definition must be `<name> <type>`: %s", def)
	}
	return ColumnDef{
		Name:    stripQuotes(strings.Join(tokens[:len(tokens)-1], " ")),
		RawType: tokens[len(tokens)-1],
	}, nil
}

func recognizeAlterTable(sql string) (Statement, error) {
	if m := alterRenameTableRe.FindStringSubmatch(sql); m != nil {
		return &AlterRenameTable{Table: stripQuotes(m[1]), NewName: stripQuotes(m[2])}, nil
	}
	if m := alterAddColumnRe.FindStringSubmatch(sql); m != nil {
		return &AlterAddColumn{
			Table:  stripQuotes(m[1]),
			Column: ColumnDef{Name: stripQuotes(m[2]), RawType: m[3]},
		}, nil
	}
	if m := alterDropColumnRe.FindStringSubmatch(sql); m != nil {
		return &AlterDropColumn{Table: stripQuotes(m[1]), Column: stripQuotes(m[2])}, nil
	}
	if m := alterRenameColumnRe.FindStringSubmatch(sql); m != nil {
		return &AlterRenameColumn{
			Table:   stripQuotes(m[1]),
			OldName: stripQuotes(m[2]),
			NewName: stripQuotes(m[3]),
		}, nil
	}
	return nil, validationError("unsupported ALTER TABLE statement: %s", summarize(sql))
}

func recognizeDropTable(sql string) (*DropTableStatement, error) {
	m := dropRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, validationError("invalid DROP TABLE statement: %s", summarize(sql))
	}
	return &DropTableStatement{Table: stripQuotes(m[1])}, nil
}

// splitList делит список по запятым, игнорируя запятые внутри одинарных
// кавычек: 'a, b' — один элемент.
func splitList(s string) []string {
	var parts []string
	var b strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == ',' && !inQuote:
			parts = append(parts, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if tail := strings.TrimSpace(b.String()); tail != "" || len(parts) > 0 {
		parts = append(parts, tail)
	}
	return parts
}

// stripQuotes снимает обрамляющие одинарные/двойные/обратные кавычки.
func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`+"`")
}

// summarize обрезает оператор для текста ошибки.
func summarize(sql string) string {
	sql = strings.Join(strings.Fields(sql), " ")
	if len(sql) > 60 {
		return sql[:60] + "..."
	}
	return sql
}

// validationError создает ошибку валидации SQL, совместимую с таксономией
// ошибок клиента: errors.Is(err, qbclient.ErrValidation).
func validationError(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, qbclient.ErrValidation)...)
}
