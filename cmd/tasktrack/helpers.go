package main

import (
	"errors"
	"os"

	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/pkg/client"
)

// errConfig marks failures to load or validate configuration.
var errConfig = errors.New("configuration error")

// loadConfig reads the service configuration from --config or discovery.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Join(errConfig, err)
	}
	return cfg, nil
}

// getClient creates an API client from the resolved CLI configuration.
func getClient() (*client.Client, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Join(errConfig, err)
	}
	cfg, err := config.ResolveClient(homeDir)
	if err != nil {
		return nil, errors.Join(errConfig, err)
	}

	return client.NewClient(
		client.WithHost(cfg.ServerHost),
		client.WithPort(cfg.ServerPort),
		client.WithToken(cfg.Token),
	)
}

// mapErrorToExitCode maps an error to the appropriate exit code
func mapErrorToExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, client.ErrServerNotRunning) {
		return ExitServerNotRunning
	}
	if errors.Is(err, errConfig) {
		return ExitConfigError
	}
	if errors.Is(err, errBlocked) {
		return ExitRejected
	}

	var apiErr *client.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case client.ErrCodeTaskNotFound, client.ErrCodeDependencyNotFound,
			client.ErrCodeNotificationNotFound, client.ErrCodeBoardNotFound:
			return ExitNotFound
		case client.ErrCodeUnauthorized:
			return ExitUnauthorized
		case client.ErrCodeValidationFailed, client.ErrCodeCycleDetected:
			return ExitRejected
		default:
			return ExitGeneralError
		}
	}

	return ExitGeneralError
}

// handleError handles an error by printing it and exiting with the appropriate code
func handleError(err error) {
	if err == nil {
		return
	}

	printError(os.Stderr, err, jsonOutput)
	os.Exit(mapErrorToExitCode(err))
}
