// Package core defines the shared language of the roastery system.
//
// This package contains:
//   - Entity tags and the fixed relational schema contract (Schema, Table, Column)
//   - Dialect kinds and their static configuration (DialectKind, DialectConfig)
//   - Report records returned by every dialect (Birthday, TopSellingProduct, LastOrder)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
