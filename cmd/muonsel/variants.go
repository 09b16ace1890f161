package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-muonsel/internal/application"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the identification and isolation variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "identification:")
			for _, v := range application.IDVariants() {
				fmt.Fprintf(out, "  %s\n", v)
			}
			fmt.Fprintln(out, "isolation:")
			for _, v := range application.IsoVariants() {
				fmt.Fprintf(out, "  %s\n", v)
			}
			return nil
		},
	}
}
