package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// Db is the global database connection object
	Db *gorm.DB
	// Path is the path to the SQLite database file
	Path = defaultPath()
)

// ConfigurePath resolves the database location from SBANKEN_HOME, then XDG_DATA_HOME,
// falling back to ~/.sbanken/sbanken.db.
func ConfigurePath() error {
	if home := os.Getenv("SBANKEN_HOME"); home != "" {
		Path = filepath.Join(home, "sbanken.db")
		return nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		Path = filepath.Join(xdg, "sbanken", "sbanken.db")
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	Path = filepath.Join(home, ".sbanken", "sbanken.db")
	return nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".sbanken", "sbanken.db")
	}
	return filepath.Join(home, ".sbanken", "sbanken.db")
}

// InitDB initializes the database by creating the necessary directory,
// opening the database connection, migrating tables, and configuring the logger.
func InitDB() error {
	if err := createDBDirectory(); err != nil {
		return err
	}

	if err := openDatabase(); err != nil {
		return err
	}

	if err := migrateTables(); err != nil {
		return err
	}

	configureLogger()

	log.Info().Str("path", Path).Msg("Database initialized successfully")
	return nil
}

// GetDB returns the global database handle.
func GetDB() *gorm.DB { return Db }

// createDBDirectory creates the directory for the database file if it does not exist.
func createDBDirectory() error {
	dir := filepath.Dir(Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.Error().Err(err).Msg("Failed to create database directory")
			return err
		}
	}
	return nil
}

// openDatabase opens a connection to the SQLite database.
func openDatabase() error {
	var err error
	Db, err = gorm.Open(sqlite.Open(Path), &gorm.Config{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	return nil
}

// migrateTables performs automatic migration for all persisted models.
func migrateTables() error {
	return Migrate(Db)
}

// Migrate creates or updates the tables on the given connection.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	// tokens used to be keyed by client id alone; they are only a cache, so start over
	if m := conn.Migrator(); m.HasTable(&Token{}) && !m.HasColumn(&Token{}, "BaseURL") {
		if err := m.DropTable(&Token{}); err != nil {
			log.Error().Err(err).Msg("Failed to drop the outdated token table")
			return err
		}
	}
	if err := conn.AutoMigrate(&Credentials{}, &Token{}, &Account{}, &Transaction{}); err != nil {
		log.Error().Err(err).Msg("Failed to auto-migrate database")
		return err
	}
	return nil
}

// configureLogger silences GORM unless debug logging is enabled.
func configureLogger() {
	if zerolog.GlobalLevel() == zerolog.Disabled || zerolog.GlobalLevel() > zerolog.DebugLevel {
		Db.Logger = Db.Logger.LogMode(logger.Silent)
	} else {
		Db.Logger = Db.Logger.LogMode(logger.Info)
	}
}

// CloseDB closes the database connection.
func CloseDB() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get raw database connection")
		return err
	}
	return sqlDB.Close()
}
