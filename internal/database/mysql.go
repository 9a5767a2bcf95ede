package database

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

// mysqlDriver accepts both a native DSN and a mysql:// prefixed one.
func mysqlDriver(url string) (driverSpec, error) {
	dsn := strings.TrimPrefix(url, "mysql://")

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return driverSpec{}, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true

	return driverSpec{name: driverMySQL, dsn: cfg.FormatDSN(), placeholder: squirrel.Question}, nil
}
