package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParseError reports a script problem at a file position
type ParseError struct {
	File    string
	Line    int
	Column  int
	Code    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(file string, line, column int, code, message string) *ParseError {
	return &ParseError{
		File:    file,
		Line:    line,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field   string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// NewConfigError creates a new ConfigError
func NewConfigError(field string, value any, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConnectionError represents PostgreSQL connection failure
type ConnectionError struct {
	Message    string
	Suggestion string
}

func (e *ConnectionError) Error() string {
	var b strings.Builder
	b.WriteString("database connection failed: ")
	b.WriteString(e.Message)
	if e.Suggestion != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// StoreError represents a failure while writing parse results to the catalog
type StoreError struct {
	Script   string
	Op       string
	SQLError *pgconn.PgError // PostgreSQL error details, if any
	Err      error
}

func (e *StoreError) Error() string {
	if e.SQLError != nil {
		return fmt.Sprintf("failed to %s %s: [%s] %s", e.Op, e.Script, e.SQLError.Code, e.SQLError.Message)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Script, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError, extracting PostgreSQL details from err
func NewStoreError(script, op string, err error) *StoreError {
	se := &StoreError{Script: script, Op: op, Err: err}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		se.SQLError = pgErr
	}
	return se
}
