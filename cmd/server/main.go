/*
main.go - Application entry point

PURPOSE:
  Starts the ridebook command line. With no subcommand it prints help;
  "serve" runs the HTTP API.

STARTUP SEQUENCE (serve):
  1. Load config (file + RIDEBOOK_* environment overrides)
  2. Initialize logger and store (SQLite or memory)
  3. Create tracker service, API handler and router
  4. Start backup scheduler
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the backup scheduler
  4. Close database connection

EXAMPLES:
  # Run with a config file
  ./server serve --config ridebook.yaml

  # Run with in-memory store on another port
  RIDEBOOK_DATABASE__DRIVER=memory ./server serve --port 3000

  # Monthly PDF
  ./server report --month 2025-03 --pdf march.pdf

SEE ALSO:
  - cli/root.go: Commands
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"os"

	"github.com/warp/ridebook/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
