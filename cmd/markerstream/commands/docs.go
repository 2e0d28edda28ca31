package commands

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsOutput string

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file, stdout if empty")
}

var docsCmd = &cobra.Command{
	Use:          "docs",
	Short:        "Generate markdown documentation for all commands",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// No config loading
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if docsOutput == "" {
			return genDocs(rootCmd, cmd.OutOrStdout())
		}
		f, err := os.Create(docsOutput)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(f)
		if err := genDocs(rootCmd, w); err != nil {
			_ = f.Close()
			return err
		}
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	},
}

var docsStripRe = regexp.MustCompile(`(?s)### (SEE ALSO|Options inherited from parent commands).*`)

func genDocs(cmd *cobra.Command, w io.Writer) error {
	if cmd.Name() == "completion" || cmd.Hidden {
		return nil
	}
	b := bytes.NewBuffer(nil)
	if err := doc.GenMarkdown(cmd, b); err != nil {
		return err
	}
	if _, err := w.Write(docsStripRe.ReplaceAll(b.Bytes(), nil)); err != nil {
		return err
	}
	for _, c := range cmd.Commands() {
		if err := genDocs(c, w); err != nil {
			return err
		}
	}
	return nil
}
