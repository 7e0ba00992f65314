// Package sqlite provides a SQLite-backed build cache. It records the
// content hash of every compiled source file so repeat runs can skip
// unchanged inputs. Migrations are embedded and applied on open.
package sqlite
