package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/PowerDNS/simpleblob"
	"github.com/c2h5oh/datasize"
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/PowerDNS/markerstream/markers"
	"github.com/PowerDNS/markerstream/tree"
)

func init() {
	rootCmd.AddCommand(blobsCmd)

	blobsCmd.AddCommand(blobsListCmd)
	blobsListCmd.Flags().StringP("prefix", "p", "", "Prefix filter, defaults to the blobs of this instance")
	blobsListCmd.Flags().BoolP("all", "a", false, "List all blobs, of all instances")
	blobsListCmd.Flags().BoolP("long", "l", false, "Add extra information, like size")
	blobsListCmd.Flags().BoolP("time", "t", false, "Sort by blob time")

	blobsCmd.AddCommand(blobsDumpCmd)
	blobsDumpCmd.Flags().StringP("format", "f", "text",
		"Output format, one of: 'text' (default), 'yaml', 'cbor'")
	blobsDumpCmd.Flags().StringP("kind", "k", "",
		"Stream kind ('save' or 'snap'), if it cannot be derived from the name")
	blobsDumpCmd.Flags().BoolP("local", "l", false,
		"Dump a local file instead of a remote blob")

	blobsCmd.AddCommand(blobsRemoveCmd)

	blobsCmd.AddCommand(blobsCleanCmd)
}

var blobsCmd = &cobra.Command{
	Use:   "blobs",
	Short: "Remote blob operations (list, dump, remove, clean)",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var blobsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List stored blobs",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(rootCtx)
		if err != nil {
			return err
		}
		prefix, err := cmd.Flags().GetString("prefix")
		if err != nil {
			return err
		}
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}
		long, err := cmd.Flags().GetBool("long")
		if err != nil {
			return err
		}
		byTime, err := cmd.Flags().GetBool("time")
		if err != nil {
			return err
		}
		if prefix == "" && !all {
			prefix = conf.Instance + "__"
		}

		list, err := st.List(rootCtx, prefix)
		if err != nil {
			return err
		}
		if byTime {
			sortByTime(list)
		}

		out := cmd.OutOrStdout()
		for _, blob := range list {
			if long {
				fmt.Fprintf(out, "%10s\t%s\n", datasize.ByteSize(blob.Size).HumanReadable(), blob.Name)
			} else {
				fmt.Fprintln(out, blob.Name)
			}
		}
		return nil
	},
}

var blobsRemoveCmd = &cobra.Command{
	Use:          "remove NAME...",
	Short:        "Remove blobs",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(rootCtx)
		if err != nil {
			return err
		}
		for _, name := range args {
			if err := st.Delete(rootCtx, name); err != nil {
				return err
			}
		}
		return nil
	},
}

var blobsCleanCmd = &cobra.Command{
	Use:          "clean",
	Short:        "Remove saves and snapshots no longer needed for a restore",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, _, err := setup(rootCtx)
		if err != nil {
			return err
		}
		res, err := m.Clean(rootCtx)
		if err != nil {
			return err
		}
		for _, name := range res.Removed {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		if res.Failed > 0 {
			return fmt.Errorf("%d blobs could not be removed", res.Failed)
		}
		return nil
	},
}

var blobsDumpCmd = &cobra.Command{
	Use:          "dump NAME",
	Short:        "Dump blob contents for debugging",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		kind, err := cmd.Flags().GetString("kind")
		if err != nil {
			return err
		}
		local, err := cmd.Flags().GetBool("local")
		if err != nil {
			return err
		}

		var data []byte
		if local {
			data, err = os.ReadFile(args[0])
			if err != nil {
				return err
			}
		} else {
			st, err := openStorage(rootCtx)
			if err != nil {
				return err
			}
			data, err = st.Load(rootCtx, args[0])
			if err != nil {
				return err
			}
		}

		if kind == "" {
			ni, err := markers.ParseName(filepath.Base(args[0]))
			if err != nil {
				return fmt.Errorf("cannot derive kind from name, use --kind: %v", err)
			}
			kind = string(ni.Kind)
		}
		blocks, err := loadBlocks(markers.Kind(kind), data)
		if err != nil {
			return err
		}

		out := bufio.NewWriter(cmd.OutOrStdout())
		defer out.Flush()
		return dumpBlocks(out, format, blocks)
	},
}

func loadBlocks(kind markers.Kind, data []byte) ([]markers.Block, error) {
	switch kind {
	case markers.KindSave:
		return markers.LoadSave(data)
	case markers.KindSnap:
		return markers.LoadSnapshots(data)
	default:
		return nil, fmt.Errorf("unknown stream kind: %s", kind)
	}
}

// dumpMarker is the CBOR representation of a marker. Attributes are encoded
// as key, value pairs to keep their order.
type dumpMarker struct {
	ID         int64   `cbor:"id"`
	Type       string  `cbor:"type"`
	Attributes [][]any `cbor:"attributes"`
}

type dumpBlock struct {
	Path    string       `cbor:"path"`
	Markers []dumpMarker `cbor:"markers"`
}

func dumpBlocks(out *bufio.Writer, format string, blocks []markers.Block) error {
	switch format {
	case "text":
		for _, b := range blocks {
			fmt.Fprintf(out, "### %s (%d markers)\n", b.Path, len(b.Markers))
			for _, m := range b.Markers {
				attrs := make([]string, 0, len(m.Attributes))
				for _, a := range m.Attributes {
					attrs = append(attrs, fmt.Sprintf("%s=%#v", a.Key, a.Value))
				}
				fmt.Fprintf(out, "%d  %s  %s\n", m.ID, m.Type, strings.Join(attrs, " "))
			}
		}
		return nil
	case "yaml":
		y, err := tree.FileFromBlocks(blocks).Marshal()
		if err != nil {
			return err
		}
		_, err = out.Write(y)
		return err
	case "cbor":
		db := make([]dumpBlock, 0, len(blocks))
		for _, b := range blocks {
			d := dumpBlock{Path: b.Path, Markers: make([]dumpMarker, 0, len(b.Markers))}
			for _, m := range b.Markers {
				dm := dumpMarker{ID: m.ID, Type: m.Type, Attributes: make([][]any, 0, len(m.Attributes))}
				for _, a := range m.Attributes {
					dm.Attributes = append(dm.Attributes, []any{a.Key, a.Value})
				}
				d.Markers = append(d.Markers, dm)
			}
			db = append(db, d)
		}
		c, err := cbor.Marshal(db)
		if err != nil {
			return err
		}
		_, err = out.Write(c)
		return err
	default:
		return fmt.Errorf("output format not supported: %s", format)
	}
}

func sortByTime(list simpleblob.BlobList) {
	slices.SortFunc(list, func(a, b simpleblob.Blob) int {
		na, errA := markers.ParseName(a.Name)
		nb, errB := markers.ParseName(b.Name)
		switch {
		case errA != nil && errB != nil:
			// Invalid names are sorted by name
			return strings.Compare(a.Name, b.Name)
		case errA != nil:
			// Invalid names come before valid names
			return -1
		case errB != nil:
			return 1
		}
		return na.Timestamp.Compare(nb.Timestamp)
	})
}
