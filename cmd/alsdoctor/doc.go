// Package main hosts the alsdoctor CLI entrypoint and command graph.
//
// The Cobra command tree reads Ableton Live Sets from disk, hands them to the
// internal codec, model, diagnosis and diff packages, and renders the results
// as tables or JSON. It centralizes configuration resolution and logging setup
// so subcommands only deal with presentation.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it through a command or flag here.
package main
