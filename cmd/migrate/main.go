package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"recordstore/internal/logging"
)

func main() {
	dir := flag.String("path", "migrations", "directory holding the migration files")
	flag.Parse()

	if flag.NArg() != 1 || (flag.Arg(0) != "up" && flag.Arg(0) != "down") {
		fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] up|down")
		os.Exit(2)
	}

	logging.SetGlobalLogger(logging.New(logging.Config{Level: "info", Format: "text"}))

	if err := run(flag.Arg(0), *dir); err != nil {
		log.Fatal().Err(err).Str("direction", flag.Arg(0)).Msg("migration failed")
	}
}

func run(direction, dir string) error {
	_ = godotenv.Load()

	dsn := databaseURL()
	if dsn == "" {
		return errors.New("DATABASE_URL (or DB_HOST, DB_USER, DB_NAME) is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	sourceURL := "file://" + filepath.ToSlash(absPath)

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if direction == "up" {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", verr)
	}
	log.Info().Str("direction", direction).Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	user, name := os.Getenv("DB_USER"), os.Getenv("DB_NAME")
	if user == "" || name == "" {
		return ""
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, os.Getenv("DB_PASSWORD"), name)
}
