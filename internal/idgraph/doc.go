// Package idgraph manages the integer identifier graph inside a Live Set.
//
// Owner nodes declare an Id attribute; reference nodes (Pointee, PointeeId)
// point at an owner's identifier. CloneWithRemap deep-copies a subtree and
// renumbers every owner in it, then rewrites the references that pointed at
// those owners, so a duplicated track neither collides with nor dangles from
// the document it is inserted into. References to owners outside the cloned
// subtree (shared global objects) are left untouched.
//
// The identifier counter is passed in and returned explicitly; nothing in
// this package keeps state between calls.
package idgraph
