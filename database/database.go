package database

import (
	"fmt"

	_ "github.com/godror/godror" // Oracle driver
	"github.com/jmoiron/sqlx"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
)

// InitDB opens an Oracle connection with the godror driver. The offline
// CLIs use this driver; the API server connects with the pure Go one.
func InitDB(cfg config.DBConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(`user="%s" password="%s" connectString="%s:%d/%s"`,
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Service)

	db, err := sqlx.Connect("godror", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
