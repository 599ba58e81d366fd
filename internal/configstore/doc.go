// Package configstore is the record-management engine of the configuration store.
//
// Keys are trimmed and upper-cased, owners are trimmed and lower-cased, and values are
// kept as a textual encoding (see Value). Every write is keyed by the (key, owner) pair:
// a write creates the only record for the pair or updates it in place.
//
// Direct calls and replication events share the same Store methods, so both entry
// points end up with identical storage semantics.
package configstore
