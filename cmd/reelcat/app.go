package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/catalog"
	"github.com/vmunix/reelcat/internal/config"
	"github.com/vmunix/reelcat/internal/dataset"
	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/internal/poster"
	"github.com/vmunix/reelcat/internal/session"
	"github.com/vmunix/reelcat/internal/store"
)

// app holds everything a command needs, built from the configuration.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *store.Store
	session *session.Session
	posters *poster.Cache
	catalog *catalog.Service
	fs      afero.Fs
	out     io.Writer
	errOut  io.Writer

	logCloser io.Closer
}

// loadConfig reads path, or the discovered config file when path is
// empty. Without any config file the defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

func newApp(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*app, error) {
	if sourceOverride != "" {
		cfg.Source = sourceOverride
	}

	log, logCloser := newLogger(cfg.Log, logLevelFlag, errOut)
	for _, w := range cfg.Warnings {
		log.Warn("config", "warning", w)
	}

	st, err := store.Open(cfg.State.Path)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("opening state: %w", err)
	}

	sess := session.New(st, session.RedirectFunc(func() {
		fmt.Fprintln(errOut, "Session expired. Run 'reelcat login' to sign in again.")
	}), log)
	if err := sess.Load(ctx); err != nil {
		log.Warn("could not restore session", "error", err)
	}

	policies, err := parsePolicies(cfg.Normalize)
	if err != nil {
		_ = st.Close()
		_ = logCloser.Close()
		return nil, err
	}

	hc := &http.Client{Timeout: cfg.API.Timeout}

	var source catalog.Source
	switch cfg.Source {
	case config.SourceDataset:
		client := dataset.New(cfg.Dataset.BaseURL,
			dataset.WithLanguage(cfg.Dataset.Language),
			dataset.WithHTTPClient(hc),
			dataset.WithLogger(log),
			dataset.WithCacheTTL(cfg.Dataset.CacheTTL),
		)
		source = catalog.NewDatasetSource(client, policies)
	case config.SourceBackend, "":
		client := api.New(
			api.WithBaseURL(cfg.API.BaseURL),
			api.WithHTTPClient(hc),
			api.WithLogger(log),
			api.WithTokenSource(sess),
			api.WithUnauthorizedHandler(sess.Expire),
			api.WithRetries(cfg.API.Retries, cfg.API.RetryDelay),
		)
		source = catalog.NewBackendSource(client, policies)
	default:
		_ = st.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}

	posterOpts := []poster.Option{
		poster.WithTTL(cfg.Poster.TTL),
		poster.WithHTTPClient(hc),
		poster.WithLogger(log),
		poster.WithExcludedOrigins(cfg.Poster.ExcludedOrigins...),
		poster.WithMaxBytes(cfg.Poster.MaxBytes),
	}
	if !cfg.Poster.Preload {
		posterOpts = append(posterOpts, poster.WithoutPreload())
	}
	posters := poster.New(st, posterOpts...)

	fs := afero.NewOsFs()
	svc := catalog.New(source,
		catalog.WithSession(sess),
		catalog.WithPosters(posters),
		catalog.WithStore(st),
		catalog.WithFS(fs),
		catalog.WithLogger(log),
		catalog.WithSearchLimit(cfg.Search.Limit),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		session:   sess,
		posters:   posters,
		catalog:   svc,
		fs:        fs,
		out:       out,
		errOut:    errOut,
		logCloser: logCloser,
	}, nil
}

func parsePolicies(cfg config.NormalizeConfig) (catalog.Policies, error) {
	list, err := film.ParsePolicy(cfg.List)
	if err != nil {
		return catalog.Policies{}, fmt.Errorf("normalize.list: %w", err)
	}
	detail, err := film.ParsePolicy(cfg.Detail)
	if err != nil {
		return catalog.Policies{}, fmt.Errorf("normalize.detail: %w", err)
	}
	return catalog.Policies{List: list, Detail: detail}, nil
}

// Close waits for background poster fetches and releases the state file.
func (a *app) Close() error {
	a.posters.Wait()
	err := a.store.Close()
	if cerr := a.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// withApp runs fn with an app built from the --config flag.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn("shutdown", "error", err)
		}
	}()
	return fn(ctx, a)
}
