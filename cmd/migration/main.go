package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/hirebridge/recruit-backend/config"

	"github.com/cockroachdb/errors"
)

func main() {
	if err := config.Init(config.ParseConfigFlag()); err != nil {
		log.Fatalf("loading configuration: %s", err)
	}
	if err := run(config.Config.Database); err != nil {
		log.Fatalf("migrating database: %s", err)
	}
}

func run(databaseConfig config.DatabaseConfig) error {
	if err := ensureDatabase(databaseConfig); err != nil {
		return err
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		databaseConfig.Username,
		databaseConfig.Password,
		databaseConfig.Host,
		databaseConfig.Port,
		databaseConfig.Name,
	)

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "resolving working directory")
	}
	m, err := migrate.New(fmt.Sprintf("file:///%s/pkg/db/migration", cwd), dsn)
	if err != nil {
		return errors.Wrap(err, "initializing migrator")
	}

	targetVersion := databaseConfig.Version
	currentVersion, dirty, err := m.Version()
	if err != nil && currentVersion != 0 {
		return errors.Wrap(err, "reading schema version")
	}
	if dirty {
		return errors.Newf("schema version %d is dirty, fix it before migrating", currentVersion)
	}

	log.Printf("schema version %d, target %d", currentVersion, targetVersion)
	// One step at a time so a failure reports the exact version it broke on.
	for step := currentVersion; step < targetVersion; {
		if err := m.Steps(1); err != nil {
			return errors.Wrapf(err, "stepping to version %d", step+1)
		}
		step, _, err = m.Version()
		if err != nil {
			return errors.Wrap(err, "reading schema version")
		}
		log.Printf("migrated to version %d", step)
	}

	log.Printf("schema is at version %d", targetVersion)
	return nil
}

// ensureDatabase creates the configured database when it does not exist yet,
// connecting through the maintenance database.
func ensureDatabase(databaseConfig config.DatabaseConfig) error {
	datasource := fmt.Sprintf("host=%s user=%s password=%s dbname=postgres port=%d sslmode=disable TimeZone=%s",
		databaseConfig.Host,
		databaseConfig.Username,
		databaseConfig.Password,
		databaseConfig.Port,
		databaseConfig.TimeZone,
	)

	db, err := sql.Open("postgres", datasource)
	if err != nil {
		return errors.Wrap(err, "opening maintenance connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return errors.Wrap(err, "pinging database server")
	}

	var count int
	if err := db.QueryRow(
		"SELECT count(*) FROM pg_catalog.pg_database WHERE datname = $1",
		databaseConfig.Name,
	).Scan(&count); err != nil {
		return errors.Wrap(err, "checking database existence")
	}
	if count > 0 {
		return nil
	}

	log.Printf("creating database %s", databaseConfig.Name)
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s;", databaseConfig.Name)); err != nil {
		return errors.Wrapf(err, "creating database %s", databaseConfig.Name)
	}
	return nil
}
