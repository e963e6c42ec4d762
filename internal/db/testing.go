package db

import (
	"fmt"
	"strings"
	"testing"

	"myblog/internal/config"

	"gorm.io/gorm"
)

// OpenTest installs a fresh in-memory sqlite database as DB for the
// duration of a test and restores the previous value afterwards.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises access.
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	previous := DB
	DB = conn
	t.Cleanup(func() {
		DB = previous
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}
