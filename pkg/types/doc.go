// Package types defines the shared data model of the SPU client: structure
// identifiers, key and value words, modifier flags, result pairs and the typed
// errors returned by every layer.
//
// Design goals:
//   - Small, copyable values (GSID, Key, Pair) passed by value everywhere.
//   - Query misses are results (StatusError), never errors.
//   - Typed errors with stable categories (not found/exhausted/bus/...).
package types
