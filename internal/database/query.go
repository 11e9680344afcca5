package database

import (
	"fmt"
	"strings"
)

// Raw is a SQL fragment spliced verbatim into a query instead of being
// bound as a parameter. Only developer-owned values (sort columns, sort
// direction) may be converted to Raw; user input never is. Keeping the
// conversion explicit at the call site is the injection-safety boundary.
type Raw string

// Query is a SQL statement built from a template with `?` placeholders.
// Each placeholder consumes one argument: Raw arguments are spliced
// verbatim, everything else becomes a positional $n bound parameter.
type Query struct {
	sql  strings.Builder
	args []any
	err  error
}

// New builds a query from a template. Placeholder and argument counts must
// match; a mismatch is reported when the query is executed.
func New(template string, args ...any) *Query {
	q := &Query{}
	q.Append(template, args...)
	return q
}

// Append continues the query with another template fragment. Parameter
// numbering carries on from the fragments already appended.
func (q *Query) Append(template string, args ...any) *Query {
	if q.err != nil {
		return q
	}
	next := 0
	for {
		i := strings.IndexByte(template, '?')
		if i < 0 {
			break
		}
		q.sql.WriteString(template[:i])
		template = template[i+1:]
		if next >= len(args) {
			q.err = fmt.Errorf("query template has more placeholders than arguments")
			return q
		}
		switch arg := args[next].(type) {
		case Raw:
			q.sql.WriteString(string(arg))
		default:
			q.args = append(q.args, arg)
			fmt.Fprintf(&q.sql, "$%d", len(q.args))
		}
		next++
	}
	if next != len(args) {
		q.err = fmt.Errorf("query template has %d placeholders for %d arguments", next, len(args))
		return q
	}
	q.sql.WriteString(template)
	return q
}

// SQL returns the statement text with positional parameters in place.
func (q *Query) SQL() string {
	return q.sql.String()
}

// Args returns the values to bind, in placeholder order.
func (q *Query) Args() []any {
	return q.args
}

// Err reports a malformed template, checked before execution.
func (q *Query) Err() error {
	return q.err
}
