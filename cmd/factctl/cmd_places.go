package main

import (
	"context"
	"fmt"

	"github.com/luraaya/factengine/internal/service"
	"github.com/luraaya/factengine/internal/store"
	"github.com/spf13/cobra"
)

type placesOptions struct {
	file   string
	dryRun bool
	limit  int
}

func newPlacesCmd(root *rootOptions) *cobra.Command {
	opts := &placesOptions{}

	cmd := &cobra.Command{
		Use:   "places",
		Short: "Manage the place directory",
		Long: `Manage the place directory used to resolve place ids.

Available subcommands:
  import - Validate and store places from a YAML file
  export - Print the directory as YAML
  get    - Show one place`,
	}
	cmd.PersistentFlags().StringVar(&opts.file, "places-file", "", "YAML place list to read instead of DATABASE_URL")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate and store places from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			list, err := store.LoadPlacesFile(args[0])
			if err != nil {
				return err
			}

			if opts.dryRun {
				for i := range list {
					if err := service.ValidatePlace(&list[i]); err != nil {
						return fmt.Errorf("place %d (%s): %w", i, list[i].PlaceID, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d places valid\n", len(list))
				return nil
			}

			places, closeFn, err := openPlaceStore(ctx, opts.file)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := service.NewPlaceService(places, root.logger).Import(ctx, list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d places imported\n", n)
			return nil
		},
	}
	importCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate only")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the place directory as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			places, closeFn, err := openPlaceStore(ctx, opts.file)
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := service.NewPlaceService(places, root.logger).List(ctx, opts.limit)
			if err != nil {
				return err
			}
			return store.EncodePlaces(cmd.OutOrStdout(), list)
		},
	}
	exportCmd.Flags().IntVar(&opts.limit, "limit", 1000, "Maximum places to export")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			places, closeFn, err := openPlaceStore(ctx, opts.file)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := service.NewPlaceService(places, root.logger).Get(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), root.output, p)
		},
	}

	cmd.AddCommand(importCmd, exportCmd, getCmd)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
