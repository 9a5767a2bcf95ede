package database

import (
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

func sqliteDriver(url string) driverSpec {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	if !strings.Contains(dbPath, "?") {
		dbPath += "?_foreign_keys=1&_busy_timeout=5000"
	}
	return driverSpec{name: driverSQLite, dsn: dbPath, placeholder: squirrel.Question}
}
