package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// WhereBuilder gom điều kiện WHERE và args theo thứ tự placeholder $n
type WhereBuilder struct {
	clauses []string
	args    []any
}

// Add appends a clause containing a single "?" placeholder.
func (w *WhereBuilder) Add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// SQL returns " WHERE ..." or "" when no clause was added.
func (w *WhereBuilder) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + JoinWithAnd(w.clauses)
}

func (w *WhereBuilder) Args() []any {
	return w.args
}

// Next returns the next free placeholder index.
func (w *WhereBuilder) Next() int {
	return len(w.args) + 1
}
