package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gm2211/hudson-dashboard/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Usage:
//
//	export DASHBOARD_DB_DSN=user:pass@tcp(127.0.0.1:3306)/dashboard?charset=utf8mb4&parseTime=true&loc=UTC
//	go run ./scripts/print_gorm_schema.go
//
// 打印 GORM 解析出的字段类型，并与库里实际的列对比
func main() {
	dsn := os.Getenv("DASHBOARD_DB_DSN")
	if dsn == "" {
		log.Fatal("DASHBOARD_DB_DSN is empty")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	type col struct {
		Field string
		Type  string
		Null  string
		Key   string
	}

	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			log.Fatalf("parse %T: %v", m, err)
		}
		table := stmt.Schema.Table

		fmt.Printf("=== %s (GORM) ===\n", table)
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			fmt.Printf("%s\t%s\t%s\n", f.DBName, db.Dialector.DataTypeOf(f), f.Tag.Get("gorm"))
		}

		var cols []col
		if err := db.Raw("SHOW COLUMNS FROM " + table).Scan(&cols).Error; err != nil {
			fmt.Printf("SHOW COLUMNS FROM %s failed: %v\n", table, err)
			continue
		}
		fmt.Printf("=== %s (database) ===\n", table)
		for _, c := range cols {
			fmt.Printf("%s\t%s\t%s\t%s\n", c.Field, c.Type, c.Null, c.Key)
		}
	}
}
