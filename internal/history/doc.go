// Package history records fuzzy lookups in a local SQLite database so the
// CLI and API can show what was searched recently and what matched.
//
// The store uses the pure-Go modernc.org/sqlite driver in WAL mode and retries
// writes that collide with another process holding the database lock.
package history
