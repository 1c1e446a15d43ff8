// Package logs reads back the daily log files written by the logging
// package.
//
// It finds the newest alsdoctor log in a directory, returns the last N lines
// with bounded memory, and polls for appended lines in follow mode. Follow
// mode switches to the next day's file when the logger rotates. Callers supply
// a context so polling stops cleanly when the CLI exits.
package logs
