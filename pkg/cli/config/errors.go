package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicateID        = goerr.New("duplicate ID")
	ErrInvalidScore       = goerr.New("score out of range")
	ErrMissingName        = goerr.New("name is required")
	ErrInvalidRegister    = goerr.New("invalid risk register")
	ErrInvalidBackend     = goerr.New("invalid repository backend")
	ErrMissingBackendFlag = goerr.New("required repository flag is missing")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	IDKey          = "id"
	ScoreKey       = "score"
	ReportIndexKey = "report_index"
	BackendKey     = "backend"
)
