// Parses flags and configures logging for the forkd daemon.
//
// The daemon accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Include source locations in log records.
//	-d, --debug     Enable debug output.
//
// and the commands:
//
//	start   Run the daemon on a Unix socket.
//	run     Send one command to a running daemon and print its output.
//	version Show version information.
//
// Flag values can also come from environment variables and from YAML files
// in the XDG configuration directories (forkd/config.yaml), keyed by flag
// name. Command-line flags take precedence over both. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity
// before the command runs.
package cli
