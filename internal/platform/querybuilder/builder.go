package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNoTable   = errors.New("table is required")
	errNoColumns = errors.New("columns are required")
	errNoRows    = errors.New("rows are required")
)

// SelectAll renders SELECT cols FROM table [ORDER BY ...]. It takes no args.
func SelectAll(table string, columns []string, orderBy ...string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", errNoTable
	}
	if len(columns) == 0 {
		return "", errNoColumns
	}

	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + table
	if len(orderBy) > 0 {
		query += " ORDER BY " + strings.Join(orderBy, ", ")
	}
	return query, nil
}

// UpsertBuilder renders a multi-row INSERT that overwrites every non-key
// column on conflict with the key column.
type UpsertBuilder struct {
	table   string
	key     string
	columns []string
	rows    [][]any
	touched []string
}

func UpsertInto(table, key string) *UpsertBuilder {
	return &UpsertBuilder{table: table, key: key}
}

func (b *UpsertBuilder) Columns(columns ...string) *UpsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *UpsertBuilder) Row(values ...any) *UpsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Touch sets column = NOW() whenever an existing row is updated.
func (b *UpsertBuilder) Touch(columns ...string) *UpsertBuilder {
	b.touched = append(b.touched, columns...)
	return b
}

func (b *UpsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.columns) == 0 {
		return "", nil, errNoColumns
	}
	if len(b.rows) == 0 {
		return "", nil, errNoRows
	}
	keyIndex := indexOf(b.columns, b.key)
	if keyIndex < 0 {
		return "", nil, fmt.Errorf("conflict key %q is not an inserted column", b.key)
	}

	var sql strings.Builder
	fmt.Fprintf(&sql, "INSERT INTO %s (%s) VALUES ", b.table, strings.Join(b.columns, ", "))

	args := make([]any, 0, len(b.rows)*len(b.columns))
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteByte('(')
		for j, value := range row {
			if j > 0 {
				sql.WriteString(", ")
			}
			args = append(args, value)
			sql.WriteString("$" + strconv.Itoa(len(args)))
		}
		sql.WriteByte(')')
	}

	sets := make([]string, 0, len(b.columns)+len(b.touched))
	for i, column := range b.columns {
		if i == keyIndex {
			continue
		}
		sets = append(sets, column+" = EXCLUDED."+column)
	}
	for _, column := range b.touched {
		sets = append(sets, column+" = NOW()")
	}
	if len(sets) == 0 {
		fmt.Fprintf(&sql, " ON CONFLICT (%s) DO NOTHING", b.key)
	} else {
		fmt.Fprintf(&sql, " ON CONFLICT (%s) DO UPDATE SET %s", b.key, strings.Join(sets, ", "))
	}

	return sql.String(), args, nil
}

func indexOf(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}
