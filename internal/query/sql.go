package query

import (
	"fmt"
	"strings"
)

// spec is an internal, fully-validated description of one SELECT,
// built only from already-checked columns/filters so build never needs
// to re-validate anything -- it only has to emit placeholders.
type spec struct {
	table        string
	selectCols   []string
	aggregations map[string]Aggregation // column -> aggregate, rendered as FUNC(col) AS "FUNC_col"
	where        []Filter
	groupBy      []string
	orderBy      []orderTerm
	limit        int
}

type orderTerm struct {
	column string
	desc   bool
}

// build renders s into parameterised SQL text and its bound params, in
// that order: caller-supplied values are never interpolated into the
// string, only appended to params behind a "?" placeholder.
func (s spec) build() (string, []any) {
	var sb strings.Builder
	var params []any

	sb.WriteString("SELECT ")
	cols := make([]string, 0, len(s.selectCols)+len(s.aggregations))
	for _, c := range s.selectCols {
		cols = append(cols, quoteIdent(c))
	}
	for col, agg := range s.aggregations {
		cols = append(cols, fmt.Sprintf("%s(%s) AS %s", agg, quoteIdent(col), quoteIdent(string(agg)+"_"+col)))
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	sb.WriteString(strings.Join(cols, ", "))

	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(s.table))

	if len(s.where) > 0 {
		sb.WriteString(" WHERE ")
		clauses := make([]string, len(s.where))
		for i, f := range s.where {
			clause, p := f.render()
			clauses[i] = clause
			params = append(params, p...)
		}
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	if len(s.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		quoted := make([]string, len(s.groupBy))
		for i, c := range s.groupBy {
			quoted[i] = quoteIdent(c)
		}
		sb.WriteString(strings.Join(quoted, ", "))
	}

	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		terms := make([]string, len(s.orderBy))
		for i, o := range s.orderBy {
			dir := "ASC"
			if o.desc {
				dir = "DESC"
			}
			terms[i] = fmt.Sprintf("%s %s", quoteIdent(o.column), dir)
		}
		sb.WriteString(strings.Join(terms, ", "))
	}

	if s.limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, s.limit)
	}

	return sb.String(), params
}

// render turns one Filter into a SQL clause fragment with placeholders
// and its bound values, in left-to-right order.
func (f Filter) render() (string, []any) {
	col := quoteIdent(f.Column)
	switch {
	case f.IsList:
		placeholders := make([]string, len(f.List))
		for i := range f.List {
			placeholders[i] = "?"
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), f.List
	case f.IsRange:
		var parts []string
		var params []any
		if f.Range.Gte != nil {
			parts = append(parts, col+" >= ?")
			params = append(params, f.Range.Gte)
		}
		if f.Range.Lte != nil {
			parts = append(parts, col+" <= ?")
			params = append(params, f.Range.Lte)
		}
		if f.Range.Gt != nil {
			parts = append(parts, col+" > ?")
			params = append(params, f.Range.Gt)
		}
		if f.Range.Lt != nil {
			parts = append(parts, col+" < ?")
			params = append(params, f.Range.Lt)
		}
		if f.Range.In != nil {
			placeholders := make([]string, len(f.Range.In))
			for i := range f.Range.In {
				placeholders[i] = "?"
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")))
			params = append(params, f.Range.In...)
		}
		if f.Range.Contains != "" {
			parts = append(parts, col+" LIKE ?")
			params = append(params, "%"+f.Range.Contains+"%")
		}
		return "(" + strings.Join(parts, " AND ") + ")", params
	default:
		return col + " = ?", []any{f.Scalar}
	}
}

// quoteIdent wraps an identifier in double quotes, doubling any
// embedded quote. Column and table names come only from the Catalog
// manifest (never straight from caller input), so this guards against a
// pathological manifest entry rather than user-supplied injection.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
