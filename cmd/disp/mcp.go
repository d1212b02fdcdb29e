package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/logging"
	"github.com/Z1ni/disp/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: disp mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'disp mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newCommandFlags("serve",
		"Usage: disp mcp serve [-v]",
		"",
		"Start the MCP server on stdio. Tool calls are forwarded to the running",
		"disp instance. Logs go to stderr.",
	)
	verbose := fs.Bool("v", false, "Log debug messages")
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	logger, closer, err := logging.New(logging.Options{Verbose: *verbose, Stderr: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	server := mcp.NewServer(ipc.NewClient(), logger.With("component", "mcp"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		return 1
	}
	return 0
}
