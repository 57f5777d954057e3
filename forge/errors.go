package forge

import "errors"

// Sentinel errors for simple not-found/transport conditions. Conditions
// that carry data (deprecation, version exhaustion) are typed errors in the
// root package instead.
var (
	ErrModuleNotFound  = errors.New("forge: module not found")
	ErrVersionNotFound = errors.New("forge: version not found")
	ErrRateLimited     = errors.New("forge: rate limited")
	ErrUnauthorized    = errors.New("forge: unauthorized")
)
