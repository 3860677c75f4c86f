// Package rollback handles undoing a confirmed import.
package rollback

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"ledgerline/statement-import/cmd/root"
	"ledgerline/statement-import/internal/logging"
)

// Cmd represents the rollback command.
var Cmd = &cobra.Command{
	Use:   "rollback <token>",
	Short: "Undo a confirmed import using its rollback token",
	Long: `Delete every transaction created by a confirmed import. The token was
printed when the import was confirmed and can be redeemed exactly once.`,
	Args: cobra.ExactArgs(1),
	Run:  rollbackFunc,
}

func rollbackFunc(cmd *cobra.Command, args []string) {
	svc, closeDB, err := root.ImportService()
	if err != nil {
		root.Log.WithError(err).Error("Failed to open import database")
		os.Exit(1)
	}
	defer func() {
		_ = closeDB()
	}()

	deleted, err := svc.Rollback(context.Background(), args[0])
	if err != nil {
		root.Log.WithError(err).Error("Rollback failed")
		os.Exit(1)
	}
	root.Log.Info("Rollback completed",
		logging.Field{Key: "deleted", Value: deleted})
}
