package proformas

import (
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=otka dbname=otka sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestNextNumberQueryLocksRowWithoutAggregate(t *testing.T) {
	db := dryRunDB(t)

	var current int64
	stmt := nextNumberQuery(db, "PRF").Scan(&current).Statement

	sql := stmt.SQL.String()
	if strings.Contains(sql, "MAX(") {
		t.Fatalf("row lock cannot be combined with an aggregate: %s", sql)
	}
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Fatalf("expected row lock in query: %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY number DESC") {
		t.Fatalf("expected highest-number row selection: %s", sql)
	}
	if !strings.Contains(sql, "LIMIT") {
		t.Fatalf("expected single-row selection: %s", sql)
	}
	if len(stmt.Vars) == 0 || stmt.Vars[0] != "PRF" {
		t.Fatalf("expected series to bind first, got %v", stmt.Vars)
	}
}
