// Package session saves, restores and clears the user's working session: the
// code under review, its language and the last review result.
//
// The record is a single JSON document stored under [Key]. Loading data that
// cannot be decoded is treated as "no session".
package session
