// Package dbtest opens throwaway sqlite databases migrated with the review schema.
package dbtest

import (
	"testing"

	"github.com/angelmondragon/storereview-backend/pkg/db"
	"github.com/angelmondragon/storereview-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a client over a private in-memory database. The pool is capped
// at one connection, so code under test must route every statement inside a
// transaction through that transaction's handle.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := "file:storereview_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.NewWithConn(conn)
}
