// Package ingest handles the full import workflow command: upload, preview
// with duplicate detection, and confirmation.
package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledgerline/statement-import/cmd/root"
	"ledgerline/statement-import/internal/importer"
	"ledgerline/statement-import/internal/logging"
)

var (
	policy string
	dryRun bool
)

// Cmd represents the ingest command.
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import a statement file with duplicate detection",
	Long: `Run the import workflow on a statement file: validate and upload it,
parse it into a preview with duplicate detection against already imported
transactions, then confirm the import under the chosen duplicate policy.

Pass --dry-run to stop after the preview. A confirmed import prints a
single-use rollback token; keep it if you may need to undo the import.`,
	Run: ingestFunc,
}

func init() {
	Cmd.Flags().StringVarP(&policy, "policy", "p", importer.PolicyAutoSkip,
		"Duplicate policy: auto_skip, flag or keep")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Stop after the preview, import nothing")
}

func ingestFunc(cmd *cobra.Command, args []string) {
	if root.SharedFlags.Input == "" {
		root.Log.Error("--input is required")
		os.Exit(1)
	}

	svc, closeDB, err := root.ImportService()
	if err != nil {
		root.Log.WithError(err).Error("Failed to open import database")
		os.Exit(1)
	}
	defer func() {
		_ = closeDB()
	}()

	ctx := context.Background()
	rec, err := svc.Upload(ctx, root.SharedFlags.Input, root.SharedFlags.Bank)
	if err != nil {
		root.Log.WithError(err).Error("Upload failed")
		os.Exit(1)
	}
	if rec.Status == importer.StatusFailed {
		for _, e := range rec.Errors {
			root.Log.Error("Validation error", logging.Field{Key: "error", Value: e})
		}
		os.Exit(1)
	}

	rec, err = svc.Preview(ctx, rec.ID)
	if err != nil {
		root.Log.WithError(err).Error("Preview failed")
		os.Exit(1)
	}
	if rec.Status == importer.StatusFailed {
		for _, e := range rec.Errors {
			root.Log.Error("Parse error", logging.Field{Key: "error", Value: e})
		}
		os.Exit(1)
	}

	likely := 0
	for _, m := range rec.Matches {
		if m.IsLikelyDuplicate {
			likely++
		}
	}
	root.Log.Info("Preview ready",
		logging.Field{Key: "upload", Value: rec.ID},
		logging.Field{Key: "transactions", Value: len(rec.Result.Transactions)},
		logging.Field{Key: "likely_duplicates", Value: likely})
	for _, w := range rec.Result.Warnings {
		root.Log.Warn("Parse warning", logging.Field{Key: "warning", Value: w})
	}

	if dryRun {
		if err := svc.Cancel(ctx, rec.ID); err != nil {
			root.Log.WithError(err).Warn("Failed to cancel preview upload")
		}
		return
	}

	res, err := svc.Confirm(ctx, rec.ID, policy, nil)
	if err != nil {
		root.Log.WithError(err).Error("Confirm failed")
		os.Exit(1)
	}
	if !res.Success {
		for _, e := range res.Errors {
			root.Log.Error("Import error", logging.Field{Key: "error", Value: e})
		}
		os.Exit(1)
	}

	root.Log.Info("Import completed",
		logging.Field{Key: "import_id", Value: res.ImportID},
		logging.Field{Key: "imported", Value: res.ImportedCount},
		logging.Field{Key: "skipped", Value: res.SkippedCount},
		logging.Field{Key: "duplicates", Value: res.DuplicateCount})
	fmt.Printf("import id:      %s\n", res.ImportID)
	fmt.Printf("rollback token: %s\n", res.RollbackToken)
}
