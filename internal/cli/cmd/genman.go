package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewGenManCmd returns a cobra command to generate man pages
func NewGenManCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "genman [output-dir]",
		Short:  "Generate man pages for the shmpaper CLI",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "SHMPAPER",
				Section: "1",
			}
			return doc.GenManTree(rootCmd, header, filepath.Clean(args[0]))
		},
	}
}
