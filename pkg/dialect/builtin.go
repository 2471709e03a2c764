package dialect

import "github.com/leapstack-labs/roastery/pkg/core"

// SQLite is the embedded engine served by modernc.org/sqlite.
var SQLite = &core.DialectConfig{
	Kind:         core.DialectSQLite,
	DriverName:   "sqlite",
	GooseDialect: "sqlite3",
	Identifiers:  core.IdentifierConfig{Quote: `"`, QuoteEnd: `"`, Escape: `""`},
	Placeholder:  core.PlaceholderQuestion,
}

// MySQL is the row-store engine served by go-sql-driver/mysql.
var MySQL = &core.DialectConfig{
	Kind:         core.DialectMySQL,
	DriverName:   "mysql",
	GooseDialect: "mysql",
	Identifiers:  core.IdentifierConfig{Quote: "`", QuoteEnd: "`", Escape: "``"},
	Placeholder:  core.PlaceholderQuestion,
}

// Postgres is the MVCC engine served by pgx.
var Postgres = &core.DialectConfig{
	Kind:         core.DialectPostgres,
	DriverName:   "pgx",
	GooseDialect: "postgres",
	Identifiers:  core.IdentifierConfig{Quote: `"`, QuoteEnd: `"`, Escape: `""`},
	Placeholder:  core.PlaceholderDollar,
}

func init() {
	Register(SQLite)
	Register(MySQL)
	Register(Postgres)
}
