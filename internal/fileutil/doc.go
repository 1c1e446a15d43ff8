// Package fileutil keeps safety copies of Live Sets before they are
// rewritten in place.
//
// Copies follow Live's own convention: a Backup folder next to the set holding
// "<name> [YYYY-MM-DD HHMMSS].als" snapshots. Every copy is verified by size
// and SHA-256 before it is reported as done.
package fileutil
