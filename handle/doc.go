// Package handle defines the opaque identifiers that stand in for native
// resources at the embedding boundary.
//
// A Handle is a plain 64-bit integer, so it can cross any foreign-function
// boundary as data. Uniqueness is global to an Allocator and monotonic:
// once a handle is removed from a registry it can never resolve again,
// because no allocator ever re-issues an id.
package handle
