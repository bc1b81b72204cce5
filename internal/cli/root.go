package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/dshills/snapreview/internal/terminal"
)

const version = "0.3.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitValidation   = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "snapreview",
	Short: "AI code review for snippets",
	Long:  "Snapreview sends a code snippet to an LLM reviewer, formats the code blocks in the answer, and keeps one saved session.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
		cmd.SetContext(clog.WithLogger(cmd.Root().Context(), clog.New(h)))
	},
}

var flagVerbose bool

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// lookuper is the environment source for configuration and credentials.
var lookuper envconfig.Lookuper = envconfig.OsLookuper()

// Run executes the root command and returns an exit code.
func Run() int {
	terminal.EnableColor(terminal.WantColor(os.Stderr))
	return execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	exitCode = ExitSuccess
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// fail reports err on stderr and records the exit code.
func fail(cmd *cobra.Command, code int, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	exitCode = code
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print snapreview version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "snapreview version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(versionCmd)
}
