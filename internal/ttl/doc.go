// Package ttl models entry lifetimes for the file cache: the TTL requested
// when a value is written, and the absolute Expiry stored next to it.
//
// Expiry is evaluated lazily by readers. Nothing in this package runs in the
// background; an entry is only found dead when somebody looks at it.
package ttl
