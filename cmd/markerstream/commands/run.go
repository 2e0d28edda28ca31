package commands

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wojas/go-healthz"
	"golang.org/x/sync/errgroup"

	"github.com/PowerDNS/markerstream/status"
	"github.com/PowerDNS/markerstream/status/healthtracker"
	"github.com/PowerDNS/markerstream/status/starttracker"
	"github.com/PowerDNS/markerstream/tree"
	"github.com/PowerDNS/markerstream/utils"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Continuously persist the tree",
	Long: `Restores the tree from storage and keeps storing snapshots and saves.
The tree file, if configured, is applied on start and whenever it changes.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runPersist(rootCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func runPersist(ctx context.Context) error {
	start := starttracker.New(conf.Health, "persist")
	start.Register()

	t, m, st, err := setup(ctx)
	if err != nil {
		return err
	}
	saveHealth := healthtracker.New(conf.Health, "storage_save", "store save")
	saveHealth.Register()
	snapHealth := healthtracker.New(conf.Health, "storage_snapshot", "store snapshot")
	snapHealth.Register()
	m.SetHealth(saveHealth, snapHealth, start)

	status.SetStorage(st)
	status.SetTree(t)

	if _, err := m.Restore(ctx); err != nil {
		return err
	}
	if err := syncTreeFile(t); err != nil {
		return err
	}

	healthz.AddBuildInfo()
	if hostname, err := os.Hostname(); err == nil {
		healthz.SetMeta("hostname", hostname)
	}
	healthz.SetMeta("version", version)
	healthz.SetMeta("instance", conf.Instance)
	status.StartHTTPServer(conf)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return m.Run(ctx)
	})
	if conf.TreeFile != "" {
		eg.Go(func() error {
			return watchTreeFile(ctx, t)
		})
	}
	logrus.Info("Persisting markers")
	return eg.Wait()
}

// watchTreeFile syncs the tree file into the tree whenever its modification
// time changes.
func watchTreeFile(ctx context.Context, t *tree.Tree) error {
	l := logrus.WithField("tree_file", conf.TreeFile)
	var last time.Time
	if fi, err := os.Stat(conf.TreeFile); err == nil {
		last = fi.ModTime()
	}
	for {
		if err := utils.SleepContext(ctx, conf.SnapshotInterval); err != nil {
			return err
		}
		fi, err := os.Stat(conf.TreeFile)
		if err != nil {
			l.WithError(err).Warn("Cannot stat tree file")
			continue
		}
		if fi.ModTime().Equal(last) {
			continue
		}
		if err := syncTreeFile(t); err != nil {
			l.WithError(err).Error("Tree file sync failed")
			continue
		}
		last = fi.ModTime()
	}
}
