package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/easyfin/easyfin"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/crypto"
	dbz "github.com/easyfin/easyfin/db/zombiezen"
)

var (
	ErrMissingFlag       = errors.New("missing required global flag")
	ErrMissingCommand    = errors.New("missing command")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidFlag       = errors.New("invalid flag")
	ErrCreateDbPool      = errors.New("failed to create database pool")
	ErrCreateSecureStore = errors.New("failed to instantiate secure store")
	ErrReadFileFailed    = errors.New("failed to read file")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrAlreadyInitiated  = errors.New("configuration already exists")
)

const usage = `easyfin-config -age-key <file> -db <file> <command> [args]

Commands:
  init         store a default configuration with a fresh jwt secret
  save <file>  validate a TOML file and store it as the latest configuration
  dump         write the latest configuration to stdout
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, output io.Writer) error {
	fs := flag.NewFlagSet("easyfin-config", flag.ContinueOnError)
	fs.SetOutput(output)
	ageKeyPath := fs.String("age-key", "", "Path to the age identity file (private key 'AGE-SECRET-KEY-1...')")
	dbPath := fs.String("db", "", "Path to the SQLite database file")
	fs.Usage = func() { fmt.Fprint(output, usage) }

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	if *ageKeyPath == "" || *dbPath == "" {
		fs.Usage()
		return fmt.Errorf("%w: -age-key and -db are required", ErrMissingFlag)
	}

	cmdArgs := fs.Args()
	if len(cmdArgs) < 1 {
		fs.Usage()
		return ErrMissingCommand
	}

	pool, err := easyfin.NewZombiezenPool(*dbPath)
	if err != nil {
		return fmt.Errorf("%w (db_path: %s): %v", ErrCreateDbPool, *dbPath, err)
	}
	defer pool.Close()

	dbImpl, err := dbz.New(pool)
	if err != nil {
		return err
	}
	if err := dbImpl.Migrate(context.Background()); err != nil {
		return err
	}

	store, err := config.NewSecureStoreAge(dbImpl, *ageKeyPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateSecureStore, err)
	}

	switch cmdArgs[0] {
	case "init":
		return initConfig(output, store, *dbPath)
	case "save":
		if len(cmdArgs) != 2 {
			fs.Usage()
			return fmt.Errorf("%w: save needs a file", ErrMissingCommand)
		}
		return saveConfigFromFile(output, store, cmdArgs[1])
	case "dump":
		return dumpConfig(output, store)
	default:
		fs.Usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmdArgs[0])
	}
}

// initConfig stores the defaults with a generated secret. It refuses to
// overwrite an existing configuration.
func initConfig(output io.Writer, store config.SecureStore, dbPath string) error {
	if _, err := store.Latest(config.ScopeApplication); err == nil {
		return ErrAlreadyInitiated
	}

	cfg := config.NewDefaultConfig()
	cfg.DBPath = dbPath
	cfg.Jwt.Secret = crypto.RandomString(48, crypto.AlphanumericAlphabet)

	data, err := config.Encode(cfg)
	if err != nil {
		return err
	}
	if err := store.Save(config.ScopeApplication, data, "toml", "initial default configuration"); err != nil {
		return err
	}
	fmt.Fprintf(output, "Stored default configuration for scope '%s'\n", config.ScopeApplication)
	return nil
}

func saveConfigFromFile(output io.Writer, store config.SecureStore, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFileFailed, filename, err)
	}
	return saveConfigFromData(output, store, filename, data)
}

// saveConfigFromData validates before storing so a bad file never becomes
// the latest configuration.
func saveConfigFromData(output io.Writer, store config.SecureStore, filename string, data []byte) error {
	if _, err := config.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := store.Save(config.ScopeApplication, data, "toml", "saved from "+filename); err != nil {
		return err
	}
	fmt.Fprintf(output, "Saved %s as the latest configuration for scope '%s'\n", filename, config.ScopeApplication)
	return nil
}

func dumpConfig(output io.Writer, store config.SecureStore) error {
	data, err := store.Latest(config.ScopeApplication)
	if err != nil {
		return err
	}
	_, err = output.Write(data)
	return err
}
