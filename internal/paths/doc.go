// Provides platform-appropriate paths for the daemon.
//
// Runtime files (the PID file) live under the XDG runtime directory and
// configuration files are searched in the XDG configuration directories. The
// daemon name "forkd" is used as the subdirectory under each base path. The
// socket itself has no default location; it is always configured explicitly.
package paths
