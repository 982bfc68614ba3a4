package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytshuffle/internal/services"
	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	service    services.Service
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Config, Service and DB are normally built from the config file; tests inject them.
type RunnerOpts struct {
	Config     *shared.Config
	Service    services.Service
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		service:    opts.Service,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		shuffleCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the runner's logger, keeping its level.
func (r *Runner) SetLogger(logger *log.Logger) {
	logger.SetLevel(r.logger.GetLevel())
	r.logger = logger
}

// loadConfig returns the injected config, the file at path, or the defaults when path does not exist.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return shared.DefaultConfig(), nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}
	return config, nil
}

// openDatabase returns the injected database or opens the configured one.
//
// The returned close function is a no-op for an injected database.
func (r *Runner) openDatabase(cfg shared.DatabaseConfig) (*sql.DB, func() error, error) {
	if r.db != nil {
		return r.db, func() error { return nil }, nil
	}

	db, err := shared.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// newService returns the injected service or builds the configured one from its saved OAuth2 token.
func (r *Runner) newService(ctx context.Context, config *shared.Config) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	switch config.Shuffle.Service {
	case "youtube":
		creds := config.Credentials.YouTube
		token, err := services.LoadToken(creds.TokenFile)
		if err != nil {
			return nil, err
		}
		client := services.TokenClient(ctx, services.YouTubeOAuthConfig(creds), token)
		return services.NewYouTubeService(ctx, creds, client)
	case "spotify":
		creds := config.Credentials.Spotify
		token, err := services.LoadToken(creds.TokenFile)
		if err != nil {
			return nil, err
		}
		client := services.TokenClient(ctx, services.SpotifyOAuthConfig(creds), token)
		return services.NewSpotifyService(creds, client)
	default:
		return nil, fmt.Errorf("%w: unknown service %q", shared.ErrInvalidConfig, config.Shuffle.Service)
	}
}

func (r *Runner) writeJSON(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeErrors prints one "Error: <msg>" line per joined error.
func writeErrors(w io.Writer, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(w, "Error: %s\n", line)
	}
}
