package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/easyfin/easyfin"
	"github.com/easyfin/easyfin/config"
	dbz "github.com/easyfin/easyfin/db/zombiezen"
)

func main() {
	configPath := flag.String("config", "", "Path to the TOML configuration file")
	ageKeyPath := flag.String("age-key", "", "Path to the age identity file. The configuration is then read from the database")
	dbPath := flag.String("db", "", "Path to the SQLite database file. Required with -age-key, defaults to db_path of the configuration otherwise")
	flag.Parse()

	if err := run(*configPath, *ageKeyPath, *dbPath); err != nil {
		slog.Error("easyfin failed to start", "err", err)
		os.Exit(1)
	}
}

func run(configPath, ageKeyPath, dbPath string) error {
	if ageKeyPath != "" && configPath != "" {
		return fmt.Errorf("-config and -age-key are mutually exclusive")
	}

	if dbPath == "" {
		if ageKeyPath != "" {
			return fmt.Errorf("-db is required with -age-key")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dbPath = cfg.DBPath
	}

	pool, err := easyfin.NewZombiezenPool(dbPath)
	if err != nil {
		return err
	}

	d, err := dbz.New(pool)
	if err != nil {
		pool.Close()
		return err
	}
	if err := d.Migrate(context.Background()); err != nil {
		pool.Close()
		return fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	opts := []easyfin.Option{easyfin.WithDbApp(d)}
	if ageKeyPath != "" {
		opts = append(opts, easyfin.WithAgeKeyPath(ageKeyPath))
	} else {
		opts = append(opts, easyfin.WithConfigFile(configPath))
	}

	_, srv, err := easyfin.New(opts...)
	if err != nil {
		pool.Close()
		return err
	}
	srv.AddCloser(pool.Close)

	srv.Run()
	return nil
}
