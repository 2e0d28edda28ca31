package commands

import (
	"context"

	"github.com/PowerDNS/simpleblob"
	"github.com/sirupsen/logrus"

	"github.com/PowerDNS/markerstream/persist"
	"github.com/PowerDNS/markerstream/registry"
	"github.com/PowerDNS/markerstream/tree"
)

func openStorage(ctx context.Context) (simpleblob.Interface, error) {
	ctx, cancel := context.WithTimeout(ctx, conf.StorageTimeout)
	defer cancel()
	st, err := simpleblob.GetBackend(ctx, conf.Storage.Type, conf.Storage.Options)
	if err != nil {
		return nil, err
	}
	logrus.WithField("storage_type", conf.Storage.Type).Info("Storage backend initialised")
	return st, nil
}

// setup opens the storage and creates an empty tree with its Manager
func setup(ctx context.Context) (*tree.Tree, *persist.Manager, simpleblob.Interface, error) {
	st, err := openStorage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	reg, err := registry.New(conf.Registry)
	if err != nil {
		return nil, nil, nil, err
	}
	l := logrus.WithField("instance", conf.Instance)
	t := tree.New(l)
	if conf.LockWarnLimit > 0 {
		t.SetLockWarnLimit(conf.LockWarnLimit)
	}
	m := persist.New(t, reg, st, conf, logrus.StandardLogger())
	return t, m, st, nil
}

// syncTreeFile updates the tree with the contents of the configured tree
// file, if any. Changed resources become dirty.
func syncTreeFile(t *tree.Tree) error {
	if conf.TreeFile == "" {
		return nil
	}
	f, err := tree.LoadFile(conf.TreeFile)
	if err != nil {
		return err
	}
	if err := t.Sync(f); err != nil {
		return err
	}
	_, n, dirty := t.Counts()
	logrus.WithFields(logrus.Fields{
		"tree_file": conf.TreeFile,
		"markers":   n,
		"dirty":     dirty,
	}).Info("Synced tree file")
	return nil
}
