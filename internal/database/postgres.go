package database

import (
	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func postgresDriver(driver, url string) driverSpec {
	name := driverPgx
	if driver == "pq" {
		name = driverPq
	}
	return driverSpec{name: name, dsn: url, placeholder: squirrel.Dollar}
}
