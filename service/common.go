package service

import (
	"flag"
	"os"
	"path/filepath"

	"feedapp/app/config"
)

// Database and backup locations, variables so tests can point them at a
// temp directory.
var (
	dbPath    = config.DefaultBadgerPath
	backupDir = filepath.Join("data", "backups")
)

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	return fs
}
