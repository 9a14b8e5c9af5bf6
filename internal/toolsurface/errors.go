package toolsurface

import "errors"

var (
	// ErrToolNotFound is returned when a caller names a tool absent from
	// the registry.
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolAlreadyRegistered guards against double registration of the
	// same tool name.
	ErrToolAlreadyRegistered = errors.New("tool already registered")
)
