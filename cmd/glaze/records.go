package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/export"
	"github.com/glazeops/glaze/internal/storage"
	"github.com/spf13/cobra"
)

var recordsFormat string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print the selected records persisted by the last run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("storage.driver is none; nothing to read")
		}
		defer store.Close()

		ptrs, err := store.Records(ctx, storage.Filter{Limit: cfg.TopN})
		if err != nil {
			return fmt.Errorf("read records: %w", err)
		}

		records := make([]catalog.Record, 0, len(ptrs))
		for _, r := range ptrs {
			records = append(records, *r)
		}

		switch recordsFormat {
		case "json":
			return export.WriteJSON(os.Stdout, records)
		case "csv":
			return export.WriteCSV(os.Stdout, records)
		default:
			return fmt.Errorf("unknown format %q", recordsFormat)
		}
	},
}

func init() {
	recordsCmd.Flags().StringVar(&recordsFormat, "format", "json", "output format: json or csv")
	rootCmd.AddCommand(recordsCmd)
}
