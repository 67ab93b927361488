package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Inspect recorded interpretations",
	}

	var (
		limit  int
		asJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent interpretations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(appCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(entries))
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	list.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show interpretation counts by intent",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(appCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sum, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(sum))
			return nil
		},
	})

	var confirm bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded interpretation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to clear history without --confirm")
			}
			store, err := openHistory(appCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d interpretations.\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")
	cmd.AddCommand(clearCmd)

	return cmd
}
