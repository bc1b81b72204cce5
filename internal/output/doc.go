// Package output renders a finished review in one of three formats: text
// (styled with glamour when writing to a terminal), markdown, and json.
//
// A [Report] is built from the final orchestrator snapshot with [NewReport]
// and written with [WriteReport] to stdout or a file.
package output
