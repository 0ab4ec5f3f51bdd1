package repository

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		_ = sqldb.Close()
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock, sqldb
}

func TestSnapshotDAO_MaxVersionForUpdate(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM `dash_snapshot` FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(4))

	v, err := NewSnapshotDAO(gormDB).MaxVersion(true)
	if err != nil {
		t.Fatalf("MaxVersion: %v", err)
	}
	if v != 4 {
		t.Fatalf("expected 4, got %d", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSnapshotDAO_DeleteAllExcept(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `dash_snapshot` WHERE version <> ?")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewSnapshotDAO(gormDB).DeleteAllExcept(9)
	if err != nil {
		t.Fatalf("DeleteAllExcept: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCollectionDAO_DeleteMarked(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `dash_announcement` WHERE marked_for_deletion = ?")).
		WithArgs(true).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewAnnouncementDAO(gormDB).DeleteMarked()
	if err != nil {
		t.Fatalf("DeleteMarked: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCollectionDAO_WithDBKeepsOrdering(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `dash_status` ORDER BY display_order ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status", "display_order"}).
			AddRow(uint64(2), "Pool", "Operational", 0).
			AddRow(uint64(1), "Gym", "Outage", 1))
	mock.ExpectCommit()

	dao := NewStatusDAO(nil)
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		rows, err := dao.WithDB(tx).List()
		if err != nil {
			return err
		}
		if len(rows) != 2 || rows[0].ID != 2 || rows[1].Name != "Gym" {
			t.Fatalf("unexpected rows: %#v", rows)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestConfigDAO_GetMissingIsNil(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `dash_config` ORDER BY `dash_config`.`id` LIMIT ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := NewConfigDAO(gormDB).Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c != nil {
		t.Fatalf("expected nil config, got %#v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
