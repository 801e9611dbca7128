package constants

import "errors"

// Configuration errors.
var (
	ErrNoAccessToken      = errors.New("no access token configured, use 'hscrm config set access_token <token>' or set HUBSPOT_ACCESS_TOKEN")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidCacheType   = errors.New("invalid cache type, must be one of 'memory', 'nats' or 'none'")
	ErrNotATerminal       = errors.New("stdin is not a terminal")
	ErrEmptyTokenEntered  = errors.New("no token entered")
	ErrConfigDirTraversal = errors.New("config path contains directory traversal sequences")
)

// Validation errors.
var (
	ErrInvalidPropertyFormat = errors.New("invalid property format, expected key=value")
	ErrInvalidOutputFormat   = errors.New("invalid output format, must be one of 'table', 'json' or 'yaml'")
	ErrUnknownIDProperty     = errors.New("unknown id property")
)
