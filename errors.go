package schemaloader

import "errors"

// Option errors
var (
	ErrUnknownOption     = errors.New("unknown option")
	ErrInvalidOptionType = errors.New("invalid option value")
	ErrInvalidNaming     = errors.New("naming must be \"default\" or \"preserve\"")
	ErrInvalidPattern    = errors.New("invalid pattern")
)

// Connect info errors
var (
	ErrEmptyDSN            = errors.New("DSN cannot be empty")
	ErrInvalidConnectExtra = errors.New("invalid connect info attribute")
)
