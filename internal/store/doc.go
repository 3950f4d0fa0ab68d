// Package store implements the file-persisted TTL cache.
//
// A Store keeps an ordered in-memory mapping from key to Entry and mirrors
// it to a single JSON file, <dir>/<name>, as a full snapshot. Expired entries
// are dropped lazily: Has and Get delete the dead entry they run into, while
// Keys, All and Iter merely skip dead entries and leave them in place until
// the next lookup or explicit Prune.
//
// A Store is not safe for concurrent use. It never spawns goroutines or
// timers; every call finishes its work, including any auto-commit, before it
// returns.
package store
