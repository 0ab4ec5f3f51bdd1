package service

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/gm2211/hudson-dashboard/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB 用 go-sqlmock 创建一个可被 GORM 使用的 *gorm.DB。
// 用 mysql dialector 只是为了让生成的 SQL/占位符风格稳定，不会连接真实 MySQL。
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	// SkipDefaultTransaction: 避免 GORM 默认在每次写操作开启事务，简化 sqlmock 断言
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		_ = sqldb.Close()
		t.Fatalf("gorm.Open: %v", err)
	}

	return db, mock, sqldb
}

// newSQLiteDB 内存 SQLite，已建好全部表。发布/恢复这类多语句事务用它做端到端测试。
// 内存库按连接隔离，所以只允许一个连接。
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open sqlite: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// newFileSQLiteDB 临时目录下的文件 SQLite，允许多个连接，用来跑并发事务。
// busy_timeout 让写锁冲突时等待而不是立刻返回 SQLITE_BUSY。
func newFileSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "dashboard.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open sqlite: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// testClock 每次调用前进一秒，保证发布时间可区分
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	db        *gorm.DB
	entities  *EntityService
	publisher *PublishService
	snapshots *SnapshotService
	pushed    [][]byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{db: newSQLiteDB(t)}
	base := &Service{
		DB:  env.db,
		Now: newTestClock().Now,
	}
	base.Notify = NewNotifyService(nil, "", func(b []byte) { env.pushed = append(env.pushed, b) }, nil)
	env.entities = NewEntityService(base)
	env.publisher = NewPublishService(base)
	env.snapshots = NewSnapshotService(base)
	return env
}
