// Command longline is a PreToolUse hook binary: it reads one request from
// stdin, evaluates it against the configured rules, and writes one verdict
// to stdout.
package main

import (
	"os"

	"github.com/gzhole/longline/internal/cli"
	"github.com/gzhole/longline/internal/logger"
)

func main() {
	logger.SetVersion(cli.Version)
	os.Exit(cli.Execute())
}
