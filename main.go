package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/habedi/sbanken/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const debugEnvVar = "DEBUG_SBANKEN"

// main sets up logging from DEBUG_SBANKEN, exits on SIGINT or SIGTERM, and runs the CLI.
func main() {
	configureLogLevelFromEnv()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, func(msg string) { log.Error().Msg(msg) }, os.Exit)

	cmd.Execute()
}

// configureLogLevelFromEnv enables debug logging when DEBUG_SBANKEN is set to anything
// other than "", "0" or "false", and disables logging otherwise.
func configureLogLevelFromEnv() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(debugEnvVar))) {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	return stopChan
}

// handleInterrupt waits for a signal, logs it and exits with status 1.
func handleInterrupt(stopChan <-chan os.Signal, logFn func(string), exit func(int)) {
	sig := <-stopChan
	logFn(fmt.Sprintf("Received %s, exiting", sig))
	exit(1)
}
