package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/colrev/colrev/internal/ops"
	"github.com/colrev/colrev/internal/store"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError prints the error and exits with a code matching its kind.
func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", err)
	os.Exit(exitCodeFor(err))
}

func exitCodeFor(err error) int {
	var (
		conflict  *ops.GitConflictError
		unstaged  *ops.UnstagedChangesError
		unclean   *ops.CleanRepoRequiredError
		order     *ops.ProcessOrderViolationError
		parse     *store.RecordNotParsableError
		dupIDs    *store.DuplicateIDsError
		origins   *store.OriginError
		status    *store.StatusFieldValueError
		propagate *store.PropagatedIDChangeError
	)
	switch {
	case errors.As(err, &conflict), errors.As(err, &unstaged), errors.As(err, &unclean):
		return ExitGitError
	case errors.As(err, &order):
		return ExitOrderError
	case errors.As(err, &parse), errors.As(err, &dupIDs), errors.As(err, &origins),
		errors.As(err, &status), errors.As(err, &propagate):
		return ExitDataError
	default:
		return ExitError
	}
}
