// Package storage records run results in MySQL so failures can be compared
// across runs.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/go-sql-driver/mysql"

	"instcheck/internal/domain"
)

// DefaultTable holds one row per recorded result
const DefaultTable = "instcheck_results"

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// Settings describe the MySQL server results are written to
type Settings struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Table    string
}

// SettingsFromEnv reads DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD and
// DB_DATABASE. The .env file is expected to be loaded already.
func SettingsFromEnv() Settings {
	return Settings{
		Host:     getenv("DB_HOST", "127.0.0.1"),
		Port:     getenv("DB_PORT", "3306"),
		User:     getenv("DB_USERNAME", "root"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: getenv("DB_DATABASE", "instcheck"),
		Table:    DefaultTable,
	}
}

// DSN returns the driver connection string. An empty database connects to the
// server only.
func (s Settings) DSN(database string) string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = s.Host + ":" + s.Port
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Validate rejects identifiers that cannot be quoted safely
func (s Settings) Validate() error {
	if !validIdentifier(s.Database) {
		return fmt.Errorf("invalid database name: %q", s.Database)
	}
	if !validIdentifier(s.Table) {
		return fmt.Errorf("invalid table name: %q", s.Table)
	}
	return nil
}

// MySQLSink inserts every result as a row tagged with the run id
type MySQLSink struct {
	db     *sql.DB
	insert *sql.Stmt
	runID  string
	clock  clock.Clock

	closeOnce sync.Once
	closeErr  error
}

// OpenMySQLSink connects to the server, creates the database and table when
// missing and prepares the insert statement.
func OpenMySQLSink(ctx context.Context, s Settings, runID string, clk clock.Clock) (*MySQLSink, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := ensureDatabase(ctx, s); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", s.DSN(s.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableQuery(s.Table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", s.Table, err)
	}
	insert, err := db.PrepareContext(ctx, insertQuery(s.Table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	return &MySQLSink{db: db, insert: insert, runID: runID, clock: clk}, nil
}

// Add inserts one result
func (m *MySQLSink) Add(result domain.Result) error {
	_, err := m.insert.Exec(
		m.runID,
		result.Name,
		string(result.Status),
		result.Message,
		result.Duration.Milliseconds(),
		m.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Close releases the connection pool. It is safe to call more than once.
func (m *MySQLSink) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = errors.Join(m.insert.Close(), m.db.Close())
	})
	return m.closeErr
}

// NewRunID returns an identifier for a run started now
func NewRunID(clk clock.Clock) string {
	return fmt.Sprintf("%s-%d", clk.Now().UTC().Format("20060102T150405.000"), os.Getpid())
}

func ensureDatabase(ctx context.Context, s Settings) error {
	db, err := sql.Open("mysql", s.DSN(""))
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := db.QueryRowContext(ctx, query, s.Database).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database %s: %w", s.Database, err)
	}
	if exists {
		return nil
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", s.Database)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", s.Database, err)
	}
	return nil
}

func createTableQuery(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
		"run_id VARCHAR(64) NOT NULL, "+
		"name VARCHAR(512) NOT NULL, "+
		"status VARCHAR(16) NOT NULL, "+
		"message TEXT, "+
		"duration_ms BIGINT NOT NULL, "+
		"recorded_at DATETIME(3) NOT NULL, "+
		"INDEX idx_run (run_id))", table)
}

func insertQuery(table string) string {
	return fmt.Sprintf("INSERT INTO `%s` (run_id, name, status, message, duration_ms, recorded_at) VALUES (?, ?, ?, ?, ?, ?)", table)
}

func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
