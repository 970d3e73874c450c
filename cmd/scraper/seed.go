package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/exerciser/internal/pkg/storage"
)

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create or refresh studio rows from the brands table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := storage.Open(ctx, appConfig.Postgres, storage.OptionsFromConfig(appConfig.Scraper))
			if err != nil {
				return err
			}
			defer store.Close()

			studios := storage.StudiosFromConfig(appConfig)
			if err := store.UpsertStudios(ctx, studios); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d studios across %d brands\n", len(studios), len(appConfig.Brands))
			return nil
		},
	}
}
