package main

// Exit codes for the CLI
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitServerNotRunning = 2
	ExitConfigError      = 3
	ExitNotFound         = 4
	ExitUnauthorized     = 5
	ExitRejected         = 6
)
