// Package store persists ticket-branch associations and their history.
//
// The store writes through a KV port (see KV); records are replaced whole
// and atomically so a retry after a crash mid-write cannot corrupt state.
// FileKV is the durable implementation, MemKV backs tests.
package store
