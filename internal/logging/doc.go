// Package logging provides opt-in file-based logging with rotation for srcfind.
// When the --debug flag is set, JSON logs are written to ~/.srcfind/logs/
// and can be read back with `srcfind logs`.
//
// By default (without --debug), only warnings and errors reach stderr.
package logging
