package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"mart_inventory/internal/persistence"
)

// ErrRemoteUnavailable is returned by sync commands when the remote does not answer.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

type statusView struct {
	Store        string `json:"store"`
	DataFile     string `json:"data_file"`
	Remote       string `json:"remote"`
	RemoteError  string `json:"remote_error,omitempty"`
	Products     int    `json:"products"`
	Categories   int    `json:"categories"`
	Transactions int    `json:"transactions"`
	Locked       bool   `json:"locked"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the store, its data file and the remote state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				snap := s.store.Snapshot()
				status, err := s.manager.Status()
				view := statusView{
					Store:        snap.Settings.MartName,
					DataFile:     s.local.Path(),
					Remote:       string(status),
					Products:     len(snap.Products),
					Categories:   len(snap.Categories),
					Transactions: len(snap.Transactions),
					Locked:       snap.Settings.PINRequired(),
				}
				if err != nil {
					view.RemoteError = err.Error()
				}
				return s.out.Result(view, func() error {
					return s.out.Table([]string{"FIELD", "VALUE"}, [][]string{
						{"Store", view.Store},
						{"Data file", view.DataFile},
						{"Remote", statusLine(view.Remote, err)},
						{"Products", fmt.Sprint(view.Products)},
						{"Categories", fmt.Sprint(view.Categories)},
						{"Transactions", fmt.Sprint(view.Transactions)},
						{"PIN protected", boolWord(view.Locked)},
					})
				})
			})
		},
	}
}

// NewSyncCommand creates the sync command group.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull from or push to the remote store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace local data with the remote snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Loading already prefers the remote and writes it through locally.
			return withSession(rootOpts, cmd, false, func(s *session) error {
				if err := requireOnline(s); err != nil {
					return err
				}
				snap := s.store.Snapshot()
				s.out.Printf("Pulled %d products, %d transactions\n", len(snap.Products), len(snap.Transactions))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Overwrite the remote store with local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalSession(rootOpts, cmd, true, func(s *session) error {
				snap := s.store.Snapshot()
				s.manager.Save(cmd.Context(), snap)
				if err := requireOnline(s); err != nil {
					return err
				}
				s.out.Printf("Pushed %d products, %d transactions\n", len(snap.Products), len(snap.Transactions))
				return nil
			})
		},
	})

	return cmd
}

func requireOnline(s *session) error {
	status, err := s.manager.Status()
	switch status {
	case persistence.StatusOnline:
		return nil
	case persistence.StatusLocalOnly:
		return fmt.Errorf("%w: no API endpoint configured", ErrRemoteUnavailable)
	default:
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Probe the remote store periodically and print its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()

				settings := s.store.Settings()
				var checks atomic.Int32
				check := func() {
					status := s.manager.Check(ctx, settings)
					_, err := s.manager.Status()
					s.out.Printf("%s %s\n", time.Now().Format(time.RFC3339), statusLine(string(status), err))
					if n := checks.Add(1); count > 0 && int(n) >= count {
						cancel()
					}
				}

				check()
				c := cron.New()
				if _, err := c.AddFunc("@every "+interval.String(), check); err != nil {
					return fmt.Errorf("invalid interval %s: %w", interval, err)
				}
				c.Start()
				<-ctx.Done()
				<-c.Stop().Done()
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "time between probes")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many probes (0 runs until interrupted)")
	return cmd
}

// statusLine renders a remote status for humans.
func statusLine(status string, err error) string {
	if err == nil {
		return status
	}
	return status + " (" + strings.TrimSpace(err.Error()) + ")"
}
