package query

import "errors"

// Complexity caps from spec.md §4.4.
const (
	MaxColumns      = 50
	MaxFilters      = 20
	MaxListItems    = 100
	MaxSerialized   = 10_000
	DefaultLimit    = 20
	HardLimitCap    = 1000
	MaxStringLength = 500
)

var (
	errNestedShape = errors.New("nested shape not allowed")
)
