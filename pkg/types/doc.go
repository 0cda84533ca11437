// Package types defines the entity types, the Store and Records interfaces,
// configuration, and the standard errors for the chatkeep persistence engine.
//
// Entities carry epoch-millisecond timestamps and store-assigned UUID v7
// identifiers. Records of different owners never reference each other; the
// lifecycle manager in pkg/conversation enforces that on top of the store.
package types
