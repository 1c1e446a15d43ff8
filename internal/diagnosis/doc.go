// Package diagnosis runs a fixed rule set over a Live Set model and scores it.
//
// Rules are pure predicates over the whole project or over one track. They
// run in the order listed in rules.go and visit tracks and devices in
// document order, so the same analysis always yields the same issues in the
// same order. Each firing rule contributes one Issue; the health score starts
// at 100 and loses a fixed penalty per issue by severity.
package diagnosis
