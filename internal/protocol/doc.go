// Package protocol defines the wire format between the CLI and the daemon.
//
// Every exchange is a single newline-delimited JSON envelope carrying a
// command name and a command-specific payload. The client sends one request
// envelope, the daemon answers with an "ok" or "error" envelope, and the
// connection is closed.
package protocol
