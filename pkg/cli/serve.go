package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/fakereq/pkg/config"
	"github.com/getmockd/fakereq/pkg/fake"
)

const (
	defaultServeAddr  = "localhost:4280"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var (
	serveAddr            string
	serveConfigs         []string
	serveAllowUnexpected bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [file|glob]...",
	Short: "Serve fixture expectations over HTTP",
	Long: `Register the expectations of the given fixtures and answer HTTP calls with
them until interrupted. Each expectation answers exactly one call. Calls that
match nothing get a 501 with the closest expectations in the body, unless
--allow-unexpected is set.

On shutdown the command reports expectations that were never called and
calls that matched nothing, and exits non-zero if there were any.

Examples:
  fakereq serve fixtures/users.yaml
  fakereq serve -c 'fixtures/**/*.yaml' --addr :8080 --allow-unexpected`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := append(append([]string{}, serveConfigs...), args...)
		if len(paths) == 0 {
			return errors.New("at least one fixture file or glob is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", serveAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", serveAddr, err)
		}

		logger := newLogger(cmd.ErrOrStderr())
		return runServe(ctx, cmd.OutOrStdout(), ln, logger, paths, serveAllowUnexpected)
	},
}

// runServe serves the fixtures on ln until ctx is done, then verifies.
// It takes ownership of ln.
func runServe(ctx context.Context, out io.Writer, ln net.Listener, logger *slog.Logger, paths []string, allowUnexpected bool) error {
	defer func() { _ = ln.Close() }()

	h, err := loadHandler(logger, paths, allowUnexpected)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	logger.Info("serving expectations",
		"addr", ln.Addr().String(), "pending", len(h.Pending()), "allowUnexpected", allowUnexpected)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", "error", err)
	}

	return report(out, h)
}

// loadHandler applies every fixture to a new Handler, in argument order.
func loadHandler(logger *slog.Logger, paths []string, allowUnexpected bool) (*fake.Handler, error) {
	fixtures, err := config.LoadPaths(paths...)
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, ErrNoFixtures
	}

	h := fake.New(fake.WithLogger(logger))
	if allowUnexpected {
		h.AllowUnexpectedCalls()
	}
	for _, f := range fixtures {
		if err := f.Apply(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

type serveReport struct {
	Calls   int      `json:"calls"`
	Pending []string `json:"pending"`
	Errors  []string `json:"errors,omitempty"`
}

func report(out io.Writer, h *fake.Handler) error {
	r := serveReport{Calls: len(h.Calls()), Pending: []string{}}
	for _, e := range h.Pending() {
		r.Pending = append(r.Pending, e.String())
	}

	verifyErr := h.Verify()
	if verifyErr != nil {
		r.Errors = errorLines(verifyErr)
	}

	err := printResult(out, r, func() {
		if verifyErr == nil {
			fmt.Fprintf(out, "All expectations met (%d calls).\n", r.Calls)
			return
		}
		for _, line := range r.Errors {
			fmt.Fprintln(out, line)
		}
	})
	if err != nil {
		return err
	}

	if verifyErr != nil {
		return ErrUnmetExpectations
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "Address to listen on")
	serveCmd.Flags().StringArrayVarP(&serveConfigs, "config", "c", nil, "Fixture file or glob (repeatable)")
	serveCmd.Flags().BoolVar(&serveAllowUnexpected, "allow-unexpected", false, "Answer calls that match nothing with 200 instead of 501")
	rootCmd.AddCommand(serveCmd)
}
