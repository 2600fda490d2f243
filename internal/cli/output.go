package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xtxerr/launchboard/internal/dataset"
	lberrors "github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/query"
	"github.com/xtxerr/launchboard/internal/render"
	"github.com/xtxerr/launchboard/internal/source"
	"github.com/xtxerr/launchboard/internal/sqlview"
	"github.com/xtxerr/launchboard/internal/wire"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failure (e.g. SQL parity mismatch)
	ExitCommandError = 2 // Command error (bad flags, config, or dataset)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// openStore loads the configured dataset. A load failure is a command error:
// nothing is served from a partial dataset.
func (opts *RootOptions) openStore() (*dataset.Store, error) {
	store, err := source.Open(opts.Config.Dataset.Path, opts.Config.Dataset.Format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load dataset", err)
	}
	return store, nil
}

// openEngine loads the dataset and binds a query engine to it.
func (opts *RootOptions) openEngine() (*query.Engine, error) {
	store, err := opts.openStore()
	if err != nil {
		return nil, err
	}
	return query.NewEngine(store,
		query.WithPercentileAccuracy(opts.Config.View.EffectiveAccuracy())), nil
}

// openSQLView mirrors store into DuckDB, if enabled.
func (opts *RootOptions) openSQLView(ctx context.Context, store *dataset.Store) (*sqlview.View, error) {
	if !opts.Config.SQL.Enabled {
		return nil, WrapExitError(ExitCommandError, "sql", lberrors.ErrSQLViewUnavailable)
	}
	v, err := sqlview.New(ctx, store, sqlview.Config{MemoryLimit: opts.Config.SQL.MemoryLimit})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open sql view", err)
	}
	return v, nil
}

// writeView writes v in the selected output format.
func writeView(w io.Writer, format string, v *query.View) error {
	switch format {
	case FormatJSON:
		return render.JSON(w, v)
	case FormatProtobuf:
		return wire.NewWriter(w).WriteView(1, v)
	default:
		return render.Table(w, v)
	}
}
