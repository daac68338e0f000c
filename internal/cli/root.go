package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/wharfhq/wharfd/internal"
)

// Represents the root command for the wharfd daemon and CLI.
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Socket  string `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`

	Start    StartCmd    `cmd:"" help:"Start the daemon."`
	Build    BuildCmd    `cmd:"" help:"Build an image from a descriptor."`
	Run      RunCmd      `cmd:"" help:"Launch a serve container from a built image."`
	Ps       PsCmd       `cmd:"" help:"Show the state of a container."`
	Stop     StopCmd     `cmd:"" help:"Stop a running container."`
	Rm       RmCmd       `cmd:"" help:"Destroy a container."`
	Exec     ExecCmd     `cmd:"" help:"Run a command inside a container."`
	Cp       CpCmd       `cmd:"" help:"Copy a path out of a container."`
	Rmi      RmiCmd      `cmd:"" help:"Destroy a built image."`
	Prune    PruneCmd    `cmd:"" help:"Remove all layer checkpoints."`
	Status   StatusCmd   `cmd:"" help:"Show daemon status."`
	Shutdown ShutdownCmd `cmd:"" help:"Ask the daemon to shut down."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("The wharf build daemon.\n\nBuilds container images from wharf.yaml descriptors and launches serve containers from them."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Reconfigures the global logger based on CLI flags.
//
// Flags override build-time defaults set via linker flags.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	slog.SetDefault(slog.New(Handler(os.Stderr, level, verbose)))
}

// Builds a log handler for the given stream.
//
// Interactive terminals get colorized tint output; anything else gets plain
// key-value text. Verbose output includes source locations.
func Handler(f *os.File, level slog.Level, verbose bool) slog.Handler {
	if isatty(f) {
		return tint.NewHandler(f, &tint.Options{
			Level:     level,
			AddSource: verbose,
		})
	}
	return slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
