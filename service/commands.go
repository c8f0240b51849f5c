package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"feedapp/app/auth"
	"feedapp/app/config"
	"feedapp/app/repositories"
)

// HandleCommand runs a subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		return RunAppServer(args[1:])
	case "token":
		return token(args[1:])
	case "init", "clean", "backup", "restore":
		fs := newFlagSet(cmd)
		db := fs.String("db", dbPath, "path to the Badger database directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		dbPath = *db
		switch cmd {
		case "init":
			return initDb()
		case "clean":
			return clean()
		case "backup":
			return backup()
		}
		if fs.NArg() < 1 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(fs.Arg(0))
	case "help":
		PrintHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		return 1
	}
}

// PrintHelp prints usage for every subcommand.
func PrintHelp() {
	helpText := `Usage: feedapp <command> [options]

Commands:
  serve [--config <file>]                  Run the feed API server
  token [--config <file>] [--username <name>] <user-id>
                                           Issue a bearer token for a user
  init [--db <dir>]                        Initialize a new empty database
  clean [--db <dir>]                       Remove the database
  backup [--db <dir>]                      Create a backup of the database
  restore [--db <dir>] <file>              Restore the database from a backup
  version                                  Show version information
  help                                     Display this help message
`
	fmt.Println(helpText)
}

// token prints a signed bearer token for the given user id, using the
// configured secret and issuer.
func token(args []string) int {
	fs := newFlagSet("token")
	configPath := fs.String("config", "", "path to the YAML config file")
	username := fs.String("username", "", "username claim")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Println("Error: user id required for token")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}
	tokens, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		fmt.Printf("Failed to create token issuer: %v\n", err)
		return 1
	}
	signed, err := tokens.GenerateToken(fs.Arg(0), *username)
	if err != nil {
		fmt.Printf("Failed to sign token: %v\n", err)
		return 1
	}
	fmt.Println(signed)
	return 0
}

// clean removes the database.
func clean() int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	fmt.Print("Are you sure you want to clean the database? This cannot be undone. [y/N] ")
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Println("Operation cancelled")
		return 0
	}

	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb initializes a new empty database.
func initDb() int {
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.NewRepository(dbPath)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	if err := store.Close(); err != nil {
		fmt.Printf("Failed to close database: %v\n", err)
		return 1
	}

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full Badger backup into backupDir.
func backup() int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.NewRepository(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := store.DB().Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore loads a backup into a fresh database, replacing the existing one
// after confirmation.
func restore(backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(dbPath); err == nil {
		fmt.Print("Existing database found. Do you want to replace it? [y/N] ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.NewRepository(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.DB().Load(f, 4)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}
