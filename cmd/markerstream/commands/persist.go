package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	noRestore     bool
	restoreOutput string
)

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().BoolVar(&noRestore, "no-restore", false,
		"Do not restore from storage first, only use the tree file")

	rootCmd.AddCommand(snapshotCmd)

	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVarP(&restoreOutput, "output", "o", "",
		"Write the restored tree to this YAML file instead of stdout")
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store a full save of the tree file",
	Long: `Restores the tree from storage, applies the tree file and stores a full
save of all persistent markers.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkSaveSource(conf.TreeFile, noRestore); err != nil {
			return err
		}
		t, m, _, err := setup(rootCtx)
		if err != nil {
			return err
		}
		if !noRestore {
			if _, err := m.Restore(rootCtx); err != nil {
				return err
			}
		}
		if err := syncTreeFile(t); err != nil {
			return err
		}
		res, err := m.Save(rootCtx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Name)
		return nil
	},
}

// checkSaveSource refuses a save that would have no markers to save. Without
// a restore and a tree file the save would be empty and supersede the
// stored state.
func checkSaveSource(treeFile string, noRestore bool) error {
	if noRestore && treeFile == "" {
		return fmt.Errorf("--no-restore requires a tree_file")
	}
	return nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store a snapshot of the changes in the tree file",
	Long: `Restores the tree from storage, applies the tree file and stores a
snapshot of all resources that changed.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if conf.TreeFile == "" {
			return fmt.Errorf("no tree_file configured")
		}
		t, m, _, err := setup(rootCtx)
		if err != nil {
			return err
		}
		if _, err := m.Restore(rootCtx); err != nil {
			return err
		}
		if err := syncTreeFile(t); err != nil {
			return err
		}
		res, err := m.Snapshot(rootCtx)
		if err != nil {
			return err
		}
		if res.Name == "" {
			logrus.Info("No changes, no snapshot stored")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Name)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:          "restore",
	Short:        "Restore the tree from storage and print it as YAML",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, m, _, err := setup(rootCtx)
		if err != nil {
			return err
		}
		if _, err := m.Restore(rootCtx); err != nil {
			return err
		}
		out, err := t.Export().Marshal()
		if err != nil {
			return err
		}
		if restoreOutput != "" {
			return os.WriteFile(restoreOutput, out, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
