// Package scan analyses every Live Set under a directory tree.
//
// Documents are decoded, modelled and diagnosed concurrently with a bounded
// worker count. A document that fails to decode or model is recorded with its
// error and the run continues; only cancellation or an unreadable root stops
// a run early. Successful results can be handed to a Recorder as they
// complete.
package scan
