// Package flat provides an exact nearest-neighbour VectorIndex persisted in SQLite.
//
// Every entry is scored against the query with cosine similarity. The
// persisted file is the source of truth: an Add is committed in one
// transaction before the in-memory snapshot that searches read is replaced.
//
// # Concurrency
//
// Writers (Add, Tombstone) are serialised by a mutex. Readers load the current
// snapshot through an atomic pointer and never block on writers. The first
// Load is shared between concurrent callers via singleflight.
//
// # Data Location
//
// The index lives at <data_dir>/index/index.db.
package flat
