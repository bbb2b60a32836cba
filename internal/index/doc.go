// Package index persists time-stamped transcript segments per video and
// answers ranked phrase and prefix queries against them.
//
// The store is backed by SQLite with an FTS5 projection of the segments
// table. Triggers keep the projection in sync inside the same transaction as
// every base-table change, so readers never observe a half-replaced index.
package index
