package main

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/proligent/export"
)

func (a *app) uniqueNameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uniquename <file>",
		Short: "Print the content-derived name used for document copies",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, err := export.UniqueName(a.fs, args[0])
			if err != nil {
				return err
			}
			return writeln(a.stdout, name)
		},
	}
}
