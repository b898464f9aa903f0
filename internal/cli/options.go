package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyquery/internal/config"
	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/db/metadata"
	"github.com/rebeliceyang/lazyquery/internal/history"
	"github.com/rebeliceyang/lazyquery/internal/library"
	"github.com/rebeliceyang/lazyquery/internal/logging"
	"github.com/rebeliceyang/lazyquery/internal/models"
	"github.com/rebeliceyang/lazyquery/internal/querybuilder"
)

// RootOptions holds global flags and the services shared by all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	Source     string

	cfg     *config.Config
	logger  *slog.Logger
	lib     *library.Manager
	conns   *connection.Manager
	history *history.Store
}

func (o *RootOptions) init(cmd *cobra.Command) error {
	var err error
	if o.ConfigFile != "" {
		o.cfg, err = config.LoadFile(o.ConfigFile)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		o.cfg.Log.Level = o.LogLevel
	}

	o.logger, err = logging.New(o.cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return nil
}

func (o *RootOptions) close() {
	if o.conns != nil {
		o.conns.CloseAll()
		o.conns = nil
	}
	if o.history != nil {
		if err := o.history.Close(); err != nil {
			o.logger.Warn("failed to close history", "error", err)
		}
		o.history = nil
	}
}

// library opens the query library on first use
func (o *RootOptions) library() (*library.Manager, error) {
	if o.lib != nil {
		return o.lib, nil
	}
	path, err := o.cfg.LibraryPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library path: %w", err)
	}
	o.lib, err = library.NewManager(path, o.logger)
	if err != nil {
		return nil, err
	}
	return o.lib, nil
}

// historyStore opens the history database, or returns nil when history is disabled
func (o *RootOptions) historyStore() (*history.Store, error) {
	if !o.cfg.History.Enabled || !o.cfg.History.Persist {
		return nil, nil
	}
	if o.history != nil {
		return o.history, nil
	}
	path, err := o.cfg.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history path: %w", err)
	}
	o.history, err = history.NewStore(path)
	if err != nil {
		return nil, err
	}
	return o.history, nil
}

func (o *RootOptions) compiler() *querybuilder.Compiler {
	return querybuilder.NewCompiler(o.cfg.Dialect.DB2Markers...)
}

// dataSource picks the data source: --source, then fallback, then the configured default
func (o *RootOptions) dataSource(fallback string) (models.DataSourceConfig, error) {
	name := o.Source
	if name == "" {
		name = fallback
	}
	return o.cfg.DataSource(name)
}

// connect opens a pool for the selected data source
func (o *RootOptions) connect(ctx context.Context, fallback string) (*connection.Pool, error) {
	ds, err := o.dataSource(fallback)
	if err != nil {
		return nil, err
	}
	if o.conns == nil {
		o.conns = connection.NewManager(connection.NewCredentialStore(), o.logger)
	}
	conn, err := o.conns.Connect(ctx, ds)
	if err != nil {
		return nil, err
	}
	return conn.Pool, nil
}

// scanner opens a metadata scanner over the selected data source
func (o *RootOptions) scanner(ctx context.Context, fallback string) (*metadata.Scanner, error) {
	pool, err := o.connect(ctx, fallback)
	if err != nil {
		return nil, err
	}
	return metadata.NewScanner(pool, o.cfg.Performance.MetadataCacheDuration()), nil
}
