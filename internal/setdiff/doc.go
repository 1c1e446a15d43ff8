// Package setdiff compares two Live Set models.
//
// Tracks are paired by name and devices by (category, display name), both in
// document order when a key repeats. Device identity is a heuristic: renaming
// a device shows up as a removal plus an addition. For paired devices only
// the enabled/disabled transition is reported.
//
// The improvement verdict is a coarse vote over the health score, the issue
// count and the disabled-device count. It is advisory.
package setdiff
