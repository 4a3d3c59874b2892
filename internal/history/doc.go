// Package history persists a small ledger of past conversion runs in SQLite
// so users can review what the tool did without digging through logs. The
// database is an append-only record keyed by run ID; nothing in the
// conversion path depends on it.
package history
