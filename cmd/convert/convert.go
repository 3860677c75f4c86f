// Package convert handles the statement-to-CSV conversion command.
package convert

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"ledgerline/statement-import/cmd/root"
	"ledgerline/statement-import/internal/export"
	"ledgerline/statement-import/internal/filedetect"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/parser"
	"ledgerline/statement-import/internal/profile"
)

// Cmd represents the convert command.
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bank statement file to normalized CSV",
	Long: `Convert a bank statement file (CSV, Excel, OFX, QIF, PDF) into the
normalized CSV interchange format. The parser is chosen from the file's
extension and MIME type; pass --bank to apply a bank profile.`,
	Run: convertFunc,
}

func convertFunc(cmd *cobra.Command, args []string) {
	if root.SharedFlags.Input == "" || root.SharedFlags.Output == "" {
		root.Log.Error("Both --input and --output are required")
		os.Exit(1)
	}

	detector := filedetect.NewDetector(root.Cfg.Files.MaxSizeBytes, root.Log)
	info, err := detector.GetFileInfo(root.SharedFlags.Input)
	if err != nil {
		root.Log.WithError(err).Error("Failed to inspect input file")
		os.Exit(1)
	}

	registry := root.Registry()
	p := registry.FindParser(info.Name, info.Mime)
	if p == nil {
		root.Log.Error("Unsupported file format",
			logging.Field{Key: "file", Value: info.Name})
		os.Exit(1)
	}

	var prof *profile.BankProfile
	if root.SharedFlags.Bank != "" {
		prof, err = root.Profiles().LoadProfile(root.SharedFlags.Bank)
		if err != nil {
			root.Log.WithError(err).Error("Failed to load bank profile",
				logging.Field{Key: "bank", Value: root.SharedFlags.Bank})
			os.Exit(1)
		}
	}

	file, err := os.Open(root.SharedFlags.Input) // #nosec G304 -- operator-chosen input path
	if err != nil {
		root.Log.WithError(err).Error("Failed to open input file")
		os.Exit(1)
	}
	defer func() {
		_ = file.Close()
	}()

	result, err := p.Parse(context.Background(), file, parser.Options{Profile: prof})
	if err != nil {
		root.Log.WithError(err).Error("Failed to parse statement")
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		root.Log.Warn("Parse warning", logging.Field{Key: "warning", Value: w})
	}
	if !result.Success {
		for _, e := range result.Errors {
			root.Log.Error("Parse error", logging.Field{Key: "error", Value: e})
		}
		os.Exit(1)
	}

	if err := export.WriteFile(root.SharedFlags.Output, result.Transactions, root.Log); err != nil {
		root.Log.WithError(err).Error("Failed to write output file")
		os.Exit(1)
	}
	root.Log.Info("Conversion completed",
		logging.Field{Key: "parser", Value: p.Name()},
		logging.Field{Key: "transactions", Value: len(result.Transactions)})
}
