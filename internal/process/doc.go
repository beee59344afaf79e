// Package process runs one command and streams its standard output.
//
// [Run] creates a close-on-exec pipe, forks and execs the program with the
// pipe's write end as its standard output, relays everything the child
// writes into a sink until end of file, and reaps the child.
//
// The fork child is driven entirely by syscall.ForkExec: it redirects its
// descriptors, changes directory and execs without running any Go code,
// deferred function or exit hook. If chdir or exec fails, the child exits on
// the spot and the parent learns the errno; [Run] reports that as a start
// failure in [Result.StartErr] with a shell-style exit code (127 when the
// program or directory does not exist, 126 otherwise).
//
// When the sink is a socket on Linux, the relay uses splice(2) so the output
// never passes through user space. Otherwise, or when the kernel refuses to
// splice, it falls back to a read/write loop. Both paths deliver the same
// bytes in the same order.
//
// Example usage:
//
//	res, err := process.Run([]string{"echo", "hi"}, "", conn)
//	if err != nil {
//	    return err
//	}
//	slog.Info("done", "exit", res.ExitCode, "bytes", res.Bytes)
package process
