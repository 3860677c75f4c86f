// Package root contains the root command and the shared wiring the
// subcommands build their services from.
package root

import (
	"os"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/config"
	"ledgerline/statement-import/internal/duplicate"
	"ledgerline/statement-import/internal/factory"
	"ledgerline/statement-import/internal/filedetect"
	"ledgerline/statement-import/internal/importer"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/parser"
	"ledgerline/statement-import/internal/profile"
	"ledgerline/statement-import/internal/sqlrepo"

	"github.com/spf13/cobra"
)

// CommonFlags are the flags shared across subcommands.
type CommonFlags struct {
	Input  string
	Output string
	Bank   string
}

var (
	// Log is the shared logger for commands. PersistentPreRun replaces it
	// with one configured from the loaded config.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cfg is the loaded application configuration.
	Cfg *config.Config

	// SharedFlags holds flag values common to multiple commands.
	SharedFlags = CommonFlags{}

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "statement-import",
		Short: "Parse bank statements and import them with duplicate detection.",
		Long: `statement-import converts bank statement files (CSV, Excel, OFX, QIF, PDF)
into normalized transactions, detects duplicates against previously imported
data, and runs a confirm/rollback import workflow.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to statement-import!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			cfg, err := config.Load()
			if err != nil {
				Log.WithError(err).Error("Failed to load configuration")
				os.Exit(1)
			}
			Cfg = cfg
			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
		},
	}
)

// Init registers the persistent flags on the root command.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input statement file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Bank, "bank", "b", "", "Bank profile key")
}

// Registry builds the default parser registry from the loaded config.
func Registry() *parser.Registry {
	return factory.NewDefaultRegistry(Log, categorizer.New(Cfg.Categories, Log), nil)
}

// Profiles returns the bank profile store rooted at the configured directory.
func Profiles() *profile.Store {
	return profile.NewStore(Cfg.Files.ProfileDir, Log)
}

// ImportService wires the full import workflow against the configured SQLite
// database. The returned closer releases the database handle.
func ImportService() (*importer.Service, func() error, error) {
	repo, err := sqlrepo.New(Cfg.Database.Path, Log)
	if err != nil {
		return nil, nil, err
	}
	svc := importer.NewService(
		Registry(),
		filedetect.NewDetector(Cfg.Files.MaxSizeBytes, Log),
		Profiles(),
		duplicate.NewDetector(duplicate.Config{
			LikelyThreshold:    Cfg.Duplicates.LikelyThreshold,
			InclusionThreshold: Cfg.Duplicates.InclusionThreshold,
			DateWindowDays:     Cfg.Duplicates.DateWindowDays,
		}, Log),
		repo,
		importer.NopNotifier{},
		Log,
	)
	return svc, repo.Close, nil
}
