// Package query builds single parameterized SQL statements from declarative
// descriptors. It backs the dynamic list/filter paths of the repositories;
// fixed-shape queries stay as literal SQL in the repository that owns them.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type Action string

const (
	Read    Action = "read"
	Create  Action = "create"
	Update  Action = "update"
	Destroy Action = "destroy"
	Count   Action = "count"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrMissingTable   = errors.New("missing table")
	ErrMissingData    = errors.New("missing data")
	ErrMissingWhere   = errors.New("missing condition")
	ErrBadIdentifier  = errors.New("invalid identifier")
	ErrBadOrderColumn = errors.New("column is not sortable")
	ErrBadPagination  = errors.New("invalid pagination bounds")
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Statement describes one SQL statement. Where holds equality filters that are
// ANDed together; Data holds column values for create/update. Every value is
// bound as a parameter, and OrderBy must appear in Sortable.
type Statement struct {
	Action   Action
	Table    string
	Columns  []string
	Where    map[string]any
	Data     map[string]any
	OrderBy  string
	Desc     bool
	Sortable []string
	Limit    int
	Offset   int
}

// Build returns the SQL text and its ordered arguments. Destroy and update
// refuse to run without a WHERE clause so a malformed descriptor can never
// touch a whole table.
func (s Statement) Build() (string, []any, error) {
	if s.Table == "" {
		return "", nil, ErrMissingTable
	}
	if err := validateIdentifier(s.Table); err != nil {
		return "", nil, err
	}

	switch s.Action {
	case Read:
		return s.buildRead()
	case Create:
		return s.buildCreate()
	case Update:
		return s.buildUpdate()
	case Destroy:
		return s.buildDestroy()
	case Count:
		return s.buildCount()
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownAction, s.Action)
	}
}

func (s Statement) buildRead() (string, []any, error) {
	projection := "*"
	if len(s.Columns) > 0 {
		for _, col := range s.Columns {
			if err := validateIdentifier(col); err != nil {
				return "", nil, err
			}
		}
		projection = strings.Join(s.Columns, ", ")
	}

	var sb strings.Builder
	args := make([]any, 0, len(s.Where)+2)
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, s.Table)

	var err error
	if args, err = s.appendWhere(&sb, args); err != nil {
		return "", nil, err
	}

	if s.OrderBy != "" {
		if !contains(s.Sortable, s.OrderBy) {
			return "", nil, fmt.Errorf("%w: %q", ErrBadOrderColumn, s.OrderBy)
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", s.OrderBy, direction)
	}

	if s.Limit < 0 || s.Offset < 0 {
		return "", nil, ErrBadPagination
	}
	if s.Limit > 0 {
		args = append(args, s.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if s.Offset > 0 {
		args = append(args, s.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args, nil
}

func (s Statement) buildCreate() (string, []any, error) {
	if len(s.Data) == 0 {
		return "", nil, ErrMissingData
	}

	columns := sortedKeys(s.Data)
	args := make([]any, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	for _, col := range columns {
		if err := validateIdentifier(col); err != nil {
			return "", nil, err
		}
		args = append(args, s.Data[col])
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return sql, args, nil
}

func (s Statement) buildUpdate() (string, []any, error) {
	if len(s.Data) == 0 {
		return "", nil, ErrMissingData
	}
	if len(s.Where) == 0 {
		return "", nil, ErrMissingWhere
	}

	columns := sortedKeys(s.Data)
	args := make([]any, 0, len(columns)+len(s.Where))
	assignments := make([]string, 0, len(columns))
	for _, col := range columns {
		if err := validateIdentifier(col); err != nil {
			return "", nil, err
		}
		args = append(args, s.Data[col])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET %s", s.Table, strings.Join(assignments, ", "))

	var err error
	if args, err = s.appendWhere(&sb, args); err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

func (s Statement) buildDestroy() (string, []any, error) {
	if len(s.Where) == 0 {
		return "", nil, ErrMissingWhere
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", s.Table)

	args, err := s.appendWhere(&sb, nil)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

// buildCount applies the WHERE filters only; ordering and pagination have no
// meaning for an aggregate.
func (s Statement) buildCount() (string, []any, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COUNT(*) AS count FROM %s", s.Table)

	args, err := s.appendWhere(&sb, nil)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

func (s Statement) appendWhere(sb *strings.Builder, args []any) ([]any, error) {
	if len(s.Where) == 0 {
		return args, nil
	}

	conditions := make([]string, 0, len(s.Where))
	for _, col := range sortedKeys(s.Where) {
		if err := validateIdentifier(col); err != nil {
			return nil, err
		}
		args = append(args, s.Where[col])
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(conditions, " AND "))
	return args, nil
}

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadIdentifier, name)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
