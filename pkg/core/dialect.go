package core

import (
	"strconv"
	"strings"
)

// DialectKind is the closed set of store dialects the system can talk to.
type DialectKind int

const (
	// DialectUnknown is the zero value; it never selects an engine.
	DialectUnknown DialectKind = iota
	// DialectSQLite is the embedded, file-based engine.
	DialectSQLite
	// DialectMySQL is the networked row-oriented engine.
	DialectMySQL
	// DialectPostgres is the networked MVCC engine.
	DialectPostgres
)

// String returns the canonical dialect name.
func (k DialectKind) String() string {
	switch k {
	case DialectSQLite:
		return "sqlite"
	case DialectMySQL:
		return "mysql"
	case DialectPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// DialectKinds lists every supported dialect in a stable order.
func DialectKinds() []DialectKind {
	return []DialectKind{DialectSQLite, DialectMySQL, DialectPostgres}
}

// DialectConfig holds the static configuration for a SQL dialect.
// It is plain data with no behavior beyond formatting helpers.
type DialectConfig struct {
	// Kind is the dialect this config describes.
	Kind DialectKind

	// DriverName is the database/sql driver registered for this dialect.
	DriverName string

	// GooseDialect is the dialect name understood by goose.
	GooseDialect string

	// Identifiers defines quoting rules
	Identifiers IdentifierConfig

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // Quote character: " or `
	QuoteEnd string // End quote character
	Escape   string // Escape sequence for an embedded quote: "" or ``
}

// FormatPlaceholder returns the placeholder for the 1-based parameter index.
func (c *DialectConfig) FormatPlaceholder(index int) string {
	if c.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

// QuoteIdent quotes an identifier, escaping embedded quote characters.
func (c *DialectConfig) QuoteIdent(name string) string {
	end := c.Identifiers.QuoteEnd
	if end == "" {
		end = c.Identifiers.Quote
	}
	if c.Identifiers.Escape != "" {
		name = strings.ReplaceAll(name, end, c.Identifiers.Escape)
	}
	return c.Identifiers.Quote + name + end
}
