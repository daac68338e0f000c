// Parses flags and dispatches subcommands for the wharfd binary.
//
// The binary is both the daemon and its client: 'wharfd start' runs the
// daemon, while the remaining subcommands talk to a running daemon over its
// Unix socket.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the subcommand runs.
package cli
