package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/forkd/internal"
	"github.com/cruciblehq/forkd/internal/paths"
	"github.com/mattn/go-isatty"
)

// Represents the root command for the forkd binary.
type RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Include source locations in log output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Start   StartCmd   `cmd:"" help:"Start the daemon."`
	Run     RunCmd     `cmd:"" help:"Run a command through a running daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
//
// SIGINT and SIGTERM cancel the context handed to the command; for the
// daemon that is the shutdown trigger.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var root RootCmd
	kongCtx := kong.Parse(&root, options(ctx, paths.ConfigFiles()...)...)

	configureLogger(&root)

	return kongCtx.Run()
}

// Returns the parser options, reading configuration from the given files.
func options(ctx context.Context, configFiles ...string) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("Runs commands sent over a Unix domain socket and streams their output back."),
		kong.UsageOnError(),
		kong.Configuration(YAML, configFiles...),
		kong.Vars{
			"version": internal.VersionString(),
			"workers": strconv.Itoa(internal.Workers()),
			"pidfile": paths.PIDFile(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Installs the global logger according to the parsed flags.
//
// Records go to stderr: human-readable text on a terminal, JSON otherwise.
func configureLogger(root *RootCmd) {
	debug := root.Debug || internal.IsDebug()
	quiet := root.Quiet || internal.IsQuiet()
	verbose := root.Verbose || internal.IsVerbose()

	slog.SetDefault(NewLogger(os.Stderr, level(debug, quiet), verbose, isatty.IsTerminal(os.Stderr.Fd())))
}

// Creates a logger writing to w.
func NewLogger(w io.Writer, lvl slog.Level, verbose, text bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: verbose,
	}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler.WithGroup(internal.Name))
}

// Returns the log level for the given modes. Debug wins over quiet.
func level(debug, quiet bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	if quiet {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
