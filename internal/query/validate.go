package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

// forbiddenChars are stripped from caller-supplied string values before
// they are bound as SQL parameters. Values are always bound through
// placeholders, never concatenated, so this is a defence-in-depth
// measure against pathological input rather than the injection
// defence itself (spec.md §4.4).
const forbiddenChars = ";'\"\\"

// validateFileID resolves file_id against the Catalog, surfacing
// apperr.UnknownDataset with suggestions on a miss.
func validateFileID(cat *catalog.Catalog, fileID string) (catalog.Dataset, error) {
	if fileID == "" {
		return catalog.Dataset{}, apperr.New(apperr.InvalidArgument, "file_id is required")
	}
	return cat.Schema(fileID)
}

// validateColumnList checks that cols is a flat list of declared column
// names (no nesting), capped at MaxColumns, returning apperr.UnknownColumn
// or apperr.InvalidArgument with a precise index in the detail message.
func validateColumnList(d catalog.Dataset, field string, cols []string) error {
	if len(cols) > MaxColumns {
		return apperr.New(apperr.InvalidArgument, fmt.Sprintf("%s: too many columns (%d > %d)", field, len(cols), MaxColumns))
	}
	for i, name := range cols {
		if name == "" {
			return apperr.New(apperr.InvalidArgument, fmt.Sprintf("%s[%d]: empty column name", field, i))
		}
		if !d.HasColumn(name) {
			return apperr.New(apperr.UnknownColumn, fmt.Sprintf("%s[%d]: unknown column %q", field, i, name)).
				WithSuggestions(suggestColumn(d, name)...)
		}
	}
	return nil
}

func suggestColumn(d catalog.Dataset, name string) []string {
	// Up to 3 column names sharing the first two characters of name.
	names := d.ColumnNames()
	best := make([]string, 0, 3)
	prefixLen := 2
	if len(name) < prefixLen {
		prefixLen = len(name)
	}
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(name[:prefixLen])) {
			best = append(best, n)
		}
		if len(best) >= 3 {
			break
		}
	}
	return best
}

// assertFlat rejects a value one level below where a flat list of
// strings or a flat map of scalars is required, returning errNestedShape
// wrapped with the offending field/index for context. Used to validate
// the shape of each select entry before any name lookup.
func assertFlat(field string, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		return fmt.Errorf("%s: %w", field, errNestedShape)
	default:
		return nil
	}
}

// parseWhere converts a raw where map into a validated, ordered list of
// Filters. Every column must be declared on d; every value must be a
// scalar, a flat list (membership), or a flat range object restricted
// to the {gte,lte,gt,lt,in,contains} keys. Strings are length-capped and
// stripped of forbiddenChars.
func parseWhere(d catalog.Dataset, where map[string]any) ([]Filter, error) {
	if len(where) > MaxFilters {
		return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where: too many filters (%d > %d)", len(where), MaxFilters))
	}

	// Deterministic order: manifest column order, skipping columns not
	// present in where.
	var filters []Filter
	for _, col := range d.ColumnNames() {
		raw, ok := where[col]
		if !ok {
			continue
		}
		if !d.HasColumn(col) {
			return nil, apperr.New(apperr.UnknownColumn, fmt.Sprintf("where: unknown column %q", col)).
				WithSuggestions(suggestColumn(d, col)...)
		}
		f, err := parseFilterValue(col, raw)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	// Catch where-keys that don't name a declared column at all (the
	// loop above silently skips them since it only walks d's columns).
	for col := range where {
		if !d.HasColumn(col) {
			return nil, apperr.New(apperr.UnknownColumn, fmt.Sprintf("where: unknown column %q", col)).
				WithSuggestions(suggestColumn(d, col)...)
		}
	}

	return filters, nil
}

func parseFilterValue(col string, raw any) (Filter, error) {
	switch v := raw.(type) {
	case map[string]any:
		r, err := parseRange(col, v)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Column: col, Range: r, IsRange: true}, nil
	case []any:
		if len(v) > MaxListItems {
			return Filter{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s]: list too long (%d > %d)", col, len(v), MaxListItems))
		}
		cleaned := make([]any, len(v))
		for i, item := range v {
			c, err := cleanScalar(col, item)
			if err != nil {
				return Filter{}, err
			}
			cleaned[i] = c
		}
		return Filter{Column: col, List: cleaned, IsList: true}, nil
	default:
		c, err := cleanScalar(col, v)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Column: col, Scalar: c}, nil
	}
}

var rangeKeys = map[string]bool{"gte": true, "lte": true, "gt": true, "lt": true, "in": true, "contains": true}

func parseRange(col string, obj map[string]any) (Range, error) {
	for k := range obj {
		if !rangeKeys[k] {
			return Range{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s]: unsupported range key %q", col, k))
		}
	}
	var r Range
	var err error
	if v, ok := obj["gte"]; ok {
		if r.Gte, err = cleanScalar(col, v); err != nil {
			return Range{}, err
		}
	}
	if v, ok := obj["lte"]; ok {
		if r.Lte, err = cleanScalar(col, v); err != nil {
			return Range{}, err
		}
	}
	if v, ok := obj["gt"]; ok {
		if r.Gt, err = cleanScalar(col, v); err != nil {
			return Range{}, err
		}
	}
	if v, ok := obj["lt"]; ok {
		if r.Lt, err = cleanScalar(col, v); err != nil {
			return Range{}, err
		}
	}
	if v, ok := obj["in"]; ok {
		list, ok := v.([]any)
		if !ok {
			return Range{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s].in: must be a list", col))
		}
		if len(list) > MaxListItems {
			return Range{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s].in: list too long", col))
		}
		cleaned := make([]any, len(list))
		for i, item := range list {
			if cleaned[i], err = cleanScalar(col, item); err != nil {
				return Range{}, err
			}
		}
		r.In = cleaned
	}
	if v, ok := obj["contains"]; ok {
		s, ok := v.(string)
		if !ok {
			return Range{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s].contains: must be a string", col))
		}
		r.Contains = sanitizeString(s)
	}
	if !r.IsRange() {
		return Range{}, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s]: empty range object", col))
	}
	return r, nil
}

func cleanScalar(col string, v any) (any, error) {
	switch s := v.(type) {
	case string:
		if len(s) > MaxStringLength {
			return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("where[%s]: string exceeds %d characters", col, MaxStringLength))
		}
		return sanitizeString(s), nil
	case map[string]any, []any:
		return nil, fmt.Errorf("where[%s]: %w", col, errNestedShape)
	default:
		return v, nil
	}
}

func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenChars, r) {
			return -1
		}
		return r
	}, s)
}

// validateLimit resolves a caller-requested limit to [0, HardLimitCap],
// defaulting to DefaultLimit when the pointer is nil (omitted). An
// explicit zero is honoured as "return no rows", not an error, since
// json.Unmarshal leaves Limit pointing at 0 for the literal JSON value
// 0 (omitempty only governs marshalling, never unmarshalling), and
// spec.md §8 requires that to succeed with empty rows. A requested
// limit over HardLimitCap is clamped down and reported in the returned
// warning rather than silently truncated.
func validateLimit(requested *int) (limit int, warning string, err error) {
	if requested == nil {
		return DefaultLimit, "", nil
	}
	if *requested < 0 {
		return 0, "", apperr.New(apperr.InvalidArgument, "limit must not be negative")
	}
	if *requested > HardLimitCap {
		return HardLimitCap, fmt.Sprintf("limit %d exceeds the %d row cap, clamped to %d", *requested, HardLimitCap, HardLimitCap), nil
	}
	return *requested, "", nil
}

// RejectAliasKeys returns apperr.InvalidArgument naming the canonical
// parameter when raw's top-level keys contain one of forbidden's
// entries (alias -> canonical). Used by tools like metrics.yoy whose
// schema forbids abbreviated spellings of a required parameter: a
// struct tag alone can't reject an unrecognised field, since
// json.Unmarshal silently ignores keys it doesn't know about.
func RejectAliasKeys(raw json.RawMessage, forbidden map[string]string) error {
	var m map[string]json.RawMessage
	if json.Unmarshal(raw, &m) != nil {
		return nil
	}
	for alias, canonical := range forbidden {
		if _, present := m[alias]; present {
			return apperr.New(apperr.InvalidArgument, fmt.Sprintf("unknown parameter %q, did you mean %q?", alias, canonical))
		}
	}
	return nil
}

// validateAggregations checks that every requested aggregation targets
// a numeric column (COUNT excepted, which accepts any column).
func validateAggregations(d catalog.Dataset, aggs map[string]Aggregation) error {
	for col, agg := range aggs {
		c, ok := d.Column(col)
		if !ok {
			return apperr.New(apperr.UnknownColumn, fmt.Sprintf("aggregations: unknown column %q", col)).
				WithSuggestions(suggestColumn(d, col)...)
		}
		if agg != AggCount && !c.IsNumeric() {
			return apperr.New(apperr.InvalidArgument, fmt.Sprintf("aggregations: %s is not numeric, cannot %s", col, agg))
		}
	}
	return nil
}
