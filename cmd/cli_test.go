package cmd

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/habedi/sbanken/db"
	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/spf13/cobra"
)

// TestCreateRootCmd checks that createRootCmd returns a root command
// with the expected use string, subcommands, and a replaced help command.
func TestCreateRootCmd(t *testing.T) {
	rootCmd := createRootCmd()
	if rootCmd.Use != "sbanken" {
		t.Errorf("expected root command use to be 'sbanken', got: %s", rootCmd.Use)
	}

	subCommands := rootCmd.Commands()
	if len(subCommands) == 0 {
		t.Error("expected root command to have subcommands, got none")
	}

	names := map[string]bool{}
	for _, cmd := range subCommands {
		if cmd.Use == "help" {
			t.Error("expected help command to be replaced, but found a subcommand with use 'help'")
		}
		names[cmd.Name()] = true
	}
	for _, want := range []string{"init", "auth", "accounts", "transactions", "transfer", "version"} {
		if !names[want] {
			t.Errorf("expected subcommand %q", want)
		}
	}
}

// TestInitializeAndCloseDatabase points the database at a temporary path, opens and closes it,
// then restores the connection shared by the other tests.
func TestInitializeAndCloseDatabase(t *testing.T) {
	savedDb, savedPath := db.Db, db.Path
	t.Cleanup(func() { db.Db, db.Path = savedDb, savedPath })

	db.Path = filepath.Join(t.TempDir(), "sbanken.db")
	initializeDatabase()
	closeDatabase()
}

func TestConfigureFromFile_DBPath(t *testing.T) {
	savedPath := db.Path
	t.Cleanup(func() { db.Path = savedPath })

	want := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv("SBANKEN_DB_PATH", want)
	configureFromFile()

	if db.Path != want {
		t.Errorf("expected db path %q, got %q", want, db.Path)
	}
}

// TestExecuteFailure runs a subprocess where the root command's RunE always returns a
// validation error, and checks the process exits with that error's code.
func TestExecuteFailure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_FAILURE") == "1" {
		rootCmd := createRootCmd()
		rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
			return clierr.New(clierr.Validation, "dummy failure", errors.New("bad flag"))
		}
		if err := rootCmd.Execute(); err != nil {
			os.Exit(clierr.ExitCode(err))
		}
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecuteFailure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_FAILURE=1")
	err := cmd.Run()
	if exitError, ok := err.(*exec.ExitError); ok {
		if exitError.ExitCode() != 2 {
			t.Fatalf("expected exit code 2, got %d", exitError.ExitCode())
		}
	} else if err == nil {
		t.Fatalf("expected an exit error, but command succeeded")
	} else {
		t.Fatalf("unexpected error: %v", err)
	}
}
