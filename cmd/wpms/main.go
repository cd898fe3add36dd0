// Command wpms prepares a WordPress migration between two installs: it
// checks local prerequisites, installs WP-CLI when missing and verifies
// both sides before any files are moved.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/frhel/wp-migrate-sync/internal/runner"
	"github.com/frhel/wp-migrate-sync/internal/workflow"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("wpms: ")

	if err := newRootCommand().Execute(); err != nil {
		log.Print(describe(err))
		os.Exit(1)
	}
}

// describe turns a fatal error into the line printed before exiting.
func describe(err error) string {
	var spawn *runner.SpawnError
	if errors.As(err, &spawn) {
		return fmt.Sprintf("cannot run commands: %v (is %s installed?)", spawn.Err, spawn.Shell)
	}
	var preflight *workflow.PreflightError
	if errors.As(err, &preflight) {
		// The failed checks were already printed with the summary.
		return fmt.Sprintf("%d preflight check(s) failed", len(preflight.Failed))
	}
	return err.Error()
}
