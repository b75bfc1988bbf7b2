package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/fakereq/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	logLevel   string
	logFormat  string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fakereq",
	Short: "fakereq serves and checks HTTP expectation fixtures",
	Long: `fakereq works with the YAML fixture files that describe expected HTTP calls
and the responses to give them.

Use 'fakereq validate' in CI to catch broken fixtures, and 'fakereq serve' to
point a client at the fixtures by hand. Expectations are consumed once, in
file order, exactly as in Go tests.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the logger configured by the global flags.
func newLogger(w io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		Format: logging.ParseFormat(logFormat),
		Output: w,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the fakereq version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := struct {
			Version   string `json:"version"`
			Commit    string `json:"commit"`
			BuildDate string `json:"buildDate"`
		}{Version, Commit, BuildDate}

		out := cmd.OutOrStdout()
		return printResult(out, info, func() {
			fmt.Fprintf(out, "fakereq %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.AddCommand(versionCmd)
}
