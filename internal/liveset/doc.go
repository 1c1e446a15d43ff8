// Package liveset builds a typed model of a Live Set from its raw tree.
//
// Build walks the track container and the master track, producing one Track
// per element in document order with its mixer state and ordered device
// chain. Devices are classified through a static category table; plugin
// wrappers are classified by substring matches on the loaded plugin's name.
// Only the parameters the table names for a category are extracted.
//
// Field locations vary across Live versions, so lookups go through ordered
// candidate path lists: the first path that resolves wins. A track without a
// device chain is valid and yields an empty chain; the only hard failure is a
// document without a track container.
package liveset
