package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mart_inventory/internal/config"
	"mart_inventory/internal/inventory"
	"mart_inventory/internal/localstore"
	"mart_inventory/internal/models"
	"mart_inventory/internal/persistence"
	"mart_inventory/internal/syncclient"
	"mart_inventory/pkg/utils"
)

// session is one loaded store for the duration of a command.
type session struct {
	cfg     *config.ClientConfig
	local   *localstore.BoltStore
	manager *persistence.Manager
	store   *inventory.Store
	out     *OutputFormatter
}

func loadConfig(opts *RootOptions) (*config.ClientConfig, error) {
	cfg, err := config.LoadClient(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.DataFile != "" {
		cfg.DataFile = opts.DataFile
	}
	if opts.Endpoint != "" {
		cfg.APIEndpoint = opts.Endpoint
	}
	return cfg, nil
}

// localLoad loads from the local store only and saves through the manager.
type localLoad struct {
	*persistence.Manager
}

func (l localLoad) Load(context.Context) models.Snapshot {
	return l.LoadLocal()
}

// openSession loads the store. With localOnly the remote is not read, so the
// local data is what a later save pushes.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, localOnly bool) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	utils.InitLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)

	local, err := localstore.Open(cfg.DataFile)
	if err != nil {
		return nil, err
	}

	manager := persistence.NewManager(local, persistence.ClientFactory(
		syncclient.WithTimeouts(cfg.HealthTimeout, cfg.FetchTimeout, cfg.PushTimeout),
		syncclient.WithSharedSecret(cfg.SharedSecret),
	), cfg.APIEndpoint)

	var persister inventory.Persister = manager
	if localOnly {
		persister = localLoad{manager}
	}
	store := inventory.New(persister, inventory.WithSaveDelay(cfg.SaveDelay))
	store.Load(ctx)

	return &session{
		cfg:     cfg,
		local:   local,
		manager: manager,
		store:   store,
		out:     newOutputFormatter(opts, cmd),
	}, nil
}

func (s *session) close(ctx context.Context) {
	s.store.Close(ctx)
	if err := s.local.Close(); err != nil {
		utils.LogError(err, "Failed to close local store")
	}
}

// withSession loads the store, runs fn and saves before returning. Mutating
// commands on a PIN protected store need --pin.
func withSession(opts *RootOptions, cmd *cobra.Command, mutating bool, fn func(s *session) error) error {
	return runSession(opts, cmd, mutating, false, fn)
}

// withLocalSession is withSession without reading the remote on load.
func withLocalSession(opts *RootOptions, cmd *cobra.Command, mutating bool, fn func(s *session) error) error {
	return runSession(opts, cmd, mutating, true, fn)
}

func runSession(opts *RootOptions, cmd *cobra.Command, mutating, localOnly bool, fn func(s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts, cmd, localOnly)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if mutating {
		if err := s.store.Unlock(opts.PIN); err != nil {
			return fmt.Errorf("%w: pass the store PIN with --pin", err)
		}
	}
	return fn(s)
}
