package loader

import "errors"

// Connection errors
var (
	ErrConnectionFailed    = errors.New("failed to connect to database")
	ErrInvalidDSN          = errors.New("invalid DSN")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
	ErrOnConnectFailed     = errors.New("on_connect_do statement failed")
)

// Introspection errors
var (
	ErrSchemaNotFound     = errors.New("schema not found")
	ErrNoTablesFound      = errors.New("no tables found to dump")
	ErrQueryFailed        = errors.New("schema query failed")
	ErrResultScanFailed   = errors.New("result scan failed")
	ErrInvalidSchemaClass = errors.New("invalid schema class name")
)

// Generation errors
var (
	ErrFileWriteFailed       = errors.New("failed to write file")
	ErrDirectoryCreateFailed = errors.New("failed to create directory")
	ErrModifiedFile          = errors.New("file has been modified since it was generated, use overwrite_modifications to replace it")
	ErrForeignFile           = errors.New("file was not generated by this tool, use really_erase_my_files to replace it")
	ErrUnknownComponent      = errors.New("component not found")
	ErrComponentFailed       = errors.New("component template failed")
)
