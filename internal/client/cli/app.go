package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/client/config"
	"github.com/dmitrijs2005/daybook/internal/client/keyqueue"
	"github.com/dmitrijs2005/daybook/internal/client/session"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	config   *config.Config
	remote   client.Remote
	queue    *keyqueue.Executor
	sessions *session.Manager
	clock    calendar.Clock
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	email  string
	userID string
	// listed is the last listing shown, for addressing moments by number.
	listed []models.Moment

	stopNotify context.CancelFunc
}

// NewApp connects the gRPC store and builds the session manager.
func NewApp(c *config.Config) (*App, error) {
	clock, err := calendar.LoadLocal(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	log := logging.NewText(os.Stderr, logging.ParseLevel(c.LogLevel))

	remote, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}

	kq, err := keyqueue.LoadConfig()
	if err != nil {
		_ = remote.Close()
		return nil, err
	}
	return newApp(c, remote, keyqueue.New(kq), clock, log, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, remote client.Remote, q *keyqueue.Executor, clock calendar.Clock, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		remote: remote,
		queue:  q,
		sessions: session.NewManager(remote, q, clock, log, session.Config{
			PageSize:         c.PageSize,
			StreakRetryLimit: c.StreakRetryLimit,
			RemoteTimeout:    c.RemoteTimeout,
		}),
		clock:  clock,
		log:    log.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) isLoggedIn() bool { return a.userID != "" }

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", a.email)
}

// Run serves the REPL until the user exits or the process is signalled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.Close()

	if a.config.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.remote.Ping(pctx); err != nil {
		fmt.Fprintf(a.out, "Server %s is not reachable yet: %v\n", a.config.ServerEndpointAddr, err)
	}
	cancel()

	fmt.Fprintln(a.out, "Welcome to Daybook (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Warn(ctx, "metrics listener stopped", "error", err)
	}
}

// Close ends the session and releases the connection.
func (a *App) Close() {
	a.endSession()
	a.sessions.Close()
	a.queue.Stop()
	if err := a.remote.Close(); err != nil {
		a.log.Debug(context.Background(), "close remote", "error", err)
	}
}

func (a *App) current() (*session.Session, error) {
	return a.sessions.Current()
}

// report prints err in a user-facing form and returns it.
func (a *App) report(what string, err error) error {
	fmt.Fprintf(a.out, "%s failed: %s\n", what, describe(err))
	return err
}
