package main

// Exit codes returned by the colrev commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing settings, not a repository)
	ExitDataError   = 3 // Data error (unparsable records, validation failure)
	ExitGitError    = 4 // Repository precondition failure (dirty tree, conflicts)
	ExitOrderError  = 5 // Records have not reached the state the operation requires
)
