package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/sijms/go-ora/v2" // Oracle driver
)

// NewMigrateOracleDB opens a plain database/sql connection for migrations.
func NewMigrateOracleDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}
	return db, nil
}

// RunMigrations applies every *.up.sql file under migrationsDir in lexical
// order, skipping versions recorded in SCHEMA_MIGRATIONS. Oracle does not
// allow multiple statements per Exec, so files are split on "--;".
func RunMigrations(db *sql.DB, migrationsDir string) error {
	if err := ensureVersionTable(db); err != nil {
		return err
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		version := strings.TrimSuffix(name, ".up.sql")
		if applied[version] {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}

		if _, err := db.Exec("INSERT INTO SCHEMA_MIGRATIONS (VERSION) VALUES (:1)", version); err != nil {
			return fmt.Errorf("could not record migration %s: %w", name, err)
		}
		log.Printf("Applied migration: %s", name)
	}

	log.Println("Migrations completed")
	return nil
}

func ensureVersionTable(db *sql.DB) error {
	const ddl = `BEGIN
	EXECUTE IMMEDIATE 'CREATE TABLE SCHEMA_MIGRATIONS (VERSION VARCHAR2(255) PRIMARY KEY, APPLIED_AT TIMESTAMP DEFAULT SYSTIMESTAMP)';
EXCEPTION
	WHEN OTHERS THEN
		IF SQLCODE != -955 THEN RAISE; END IF;
END;`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("could not create SCHEMA_MIGRATIONS: %w", err)
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("SELECT VERSION FROM SCHEMA_MIGRATIONS")
	if err != nil {
		return nil, fmt.Errorf("could not read SCHEMA_MIGRATIONS: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func splitStatements(content string) []string {
	var statements []string
	for _, part := range strings.Split(content, "--;") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
