// Package store provides SQLite-backed storage for the expansion cache and
// the run log.
//
// # Expansion cache
//
// Each entry holds the rewritten text and diagnostics of one file, keyed by
// ir.ContentKey (path, exact content, directive names, record version).
// Entries record the tool version that produced them and are only reused by
// a compatible tool (same major and minor version).
//
// # Run log
//
// Every expand or check invocation is recorded with a UUIDv7 id, so runs
// sort by start time without relying on wall-clock columns.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Diagnostics are stored as RFC 8785 canonical JSON via ir.MarshalCanonical.
package store
