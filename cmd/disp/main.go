package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Z1ni/disp/internal/app"
	"github.com/Z1ni/disp/internal/config"
	"github.com/Z1ni/disp/internal/events"
	"github.com/Z1ni/disp/internal/instance"
	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/logging"
	"github.com/Z1ni/disp/internal/notify"
	"github.com/Z1ni/disp/internal/platform"
	"github.com/Z1ni/disp/internal/runtimepath"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	if len(os.Args) < 2 || isFlag(os.Args[1]) {
		os.Exit(runDaemon(os.Args[1:]))
	}

	switch os.Args[1] {
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "orient":
		os.Exit(runOrient(os.Args[2:]))
	case "about":
		os.Exit(runAbout(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: disp [options]")
	fmt.Fprintln(w, "       disp <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Without a command disp runs in the foreground and applies presets.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -c, --config PATH   Preset file (default: user config dir)")
	fmt.Fprintln(w, "  -p, --preset NAME   Apply a preset on startup, or in the running instance")
	fmt.Fprintln(w, "  -v, --verbose       Log debug messages")
	fmt.Fprintln(w, "  -l                  Also log to a file next to the preset file")
	fmt.Fprintln(w, "  -V, --version       Print the version and exit")
	fmt.Fprintln(w, "  -h, --help          Show this help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list                List presets")
	fmt.Fprintln(w, "  apply <name>        Apply a preset")
	fmt.Fprintln(w, "  save [name]         Save the current layout as a preset")
	fmt.Fprintln(w, "  orient <display> <orientation>")
	fmt.Fprintln(w, "                      Rotate one display")
	fmt.Fprintln(w, "  about               Describe the connected displays")
	fmt.Fprintln(w, "  reload              Re-read the preset file")
	fmt.Fprintln(w, "  status              Show instance status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  menu                Open the launcher menu")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'disp <command> --help' for command-specific options.")
}

// daemonOptions holds the parsed top-level flags.
type daemonOptions struct {
	configPath string
	preset     string
	verbose    bool
	logFile    bool
	version    bool
}

// parseDaemonFlags returns flag.ErrHelp for -h and a usage error for
// anything flag cannot parse.
func parseDaemonFlags(args []string, stderr io.Writer) (daemonOptions, error) {
	var opts daemonOptions
	fs := flag.NewFlagSet("disp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printMainUsage(stderr) }

	fs.StringVar(&opts.configPath, "c", "", "preset file")
	fs.StringVar(&opts.configPath, "config", "", "preset file")
	fs.StringVar(&opts.preset, "p", "", "preset to apply")
	fs.StringVar(&opts.preset, "preset", "", "preset to apply")
	fs.BoolVar(&opts.verbose, "v", false, "log debug messages")
	fs.BoolVar(&opts.verbose, "verbose", false, "log debug messages")
	fs.BoolVar(&opts.logFile, "l", false, "log to a file")
	fs.BoolVar(&opts.version, "V", false, "print the version")
	fs.BoolVar(&opts.version, "version", false, "print the version")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument: %s\n\n", fs.Arg(0))
		printMainUsage(stderr)
		return opts, errUsage
	}
	return opts, nil
}

var errUsage = errors.New("usage")

func runDaemon(args []string) int {
	opts, err := parseDaemonFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintf(os.Stdout, "disp %s\n", version)
		return 0
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	logOpts := logging.Options{Verbose: opts.verbose}
	if opts.logFile {
		logOpts.FilePath = filepath.Join(filepath.Dir(configPath), "disp.log")
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logCloser.Close()

	lockPath, err := runtimepath.LockPath()
	if err != nil {
		logger.Error("failed to resolve lock path", "error", err)
		return 1
	}
	lock, err := instance.Acquire(lockPath)
	if errors.Is(err, instance.ErrAlreadyRunning) {
		return handOff(opts.preset, lockPath, logger)
	}
	if err != nil {
		logger.Error("failed to acquire instance lock", "error", err)
		return 1
	}
	defer lock.Release()

	backend, err := platform.NewBackend()
	if err != nil {
		logger.Error("failed to connect to the display server", "error", err)
		return 1
	}
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	sink := notificationSink(logger)
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}
	notify.Start(ctx, bus, sink, logger.With("component", "notify"))

	a := app.New(app.Options{
		ConfigPath: configPath,
		Backend:    backend,
		Bus:        bus,
		Logger:     logger,
	})
	if err := a.Start(); err != nil {
		logger.Error("failed to start", "error", err, "config", configPath)
		return 1
	}

	ipcServer, err := ipc.NewServer(a, logger.With("component", "ipc"))
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	if opts.preset != "" {
		applyStartupPreset(a, opts.preset, logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading presets")
					if err := a.Reload(); err != nil {
						logger.Error("reload failed", "error", err)
					}
					continue
				}
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	logger.Info("disp started", "version", version, "instance", a.InstanceID(), "config", configPath, "socket", ipcServer.SocketPath())
	a.Run(ctx)
	return 0
}

// handOff forwards -p to the instance that holds the lock.
func handOff(name, lockPath string, logger *slog.Logger) int {
	if name == "" {
		if pid := instance.Owner(lockPath); pid > 0 {
			fmt.Fprintf(os.Stdout, "disp is already running (pid %d)\n", pid)
		} else {
			fmt.Fprintln(os.Stdout, "disp is already running")
		}
		return 0
	}

	client := ipc.NewClient()
	data, err := client.ApplyPreset(name)
	if errors.Is(err, ipc.ErrWarning) {
		logger.Warn("running instance did not apply the preset", "preset", name, "reason", err)
		return 0
	}
	if err != nil {
		logger.Error("failed to apply preset in the running instance", "preset", name, "error", err)
		return 1
	}
	logger.Info("applied preset in the running instance", "preset", data.Preset, "result", data.Message)
	return 0
}

func applyStartupPreset(a *app.App, name string, logger *slog.Logger) {
	outcome, err := a.ApplyPreset(name)
	if err != nil {
		logger.Error("failed to apply startup preset", "preset", name, "error", err)
		return
	}
	logger.Info("applied startup preset", "preset", name, "result", outcome.String())
}

// notificationSink prefers desktop notifications and falls back to the log
// when no session bus is reachable.
func notificationSink(logger *slog.Logger) notify.Sink {
	sink, err := notify.NewDBus()
	if err != nil {
		logger.Debug("desktop notifications unavailable", "error", err)
		return notify.Log{Logger: logger.With("component", "notify")}
	}
	return sink
}
