// Package profiles handles inspection of bank profiles.
package profiles

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ledgerline/statement-import/cmd/root"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/profile"
)

// Cmd represents the profiles command.
var Cmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and inspect bank profiles",
	Long: `List the available bank profiles (built-in and from the profile
directory) or show one profile's full configuration as YAML.`,
	Run: listFunc,
}

var showCmd = &cobra.Command{
	Use:   "show <bank-key>",
	Short: "Print one bank profile as YAML",
	Args:  cobra.ExactArgs(1),
	Run:   showFunc,
}

var validateCmd = &cobra.Command{
	Use:   "validate <bank-key>",
	Short: "Check a bank profile for completeness",
	Args:  cobra.ExactArgs(1),
	Run:   validateFunc,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <column-name>...",
	Short: "Suggest a field mapping for the given column headers",
	Long: `Guess which semantic field (date, description, amount, ...) each of the
given column headers carries. Useful when onboarding a new bank profile.`,
	Args: cobra.MinimumNArgs(1),
	Run:  suggestFunc,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(suggestCmd)
}

func listFunc(cmd *cobra.Command, args []string) {
	keys, err := root.Profiles().ListProfiles()
	if err != nil {
		root.Log.WithError(err).Error("Failed to list profiles")
		os.Exit(1)
	}
	for _, key := range keys {
		fmt.Println(key)
	}
}

func showFunc(cmd *cobra.Command, args []string) {
	prof := mustLoad(args[0])
	out, err := yaml.Marshal(prof)
	if err != nil {
		root.Log.WithError(err).Error("Failed to encode profile")
		os.Exit(1)
	}
	fmt.Print(string(out))
}

func validateFunc(cmd *cobra.Command, args []string) {
	prof := mustLoad(args[0])
	valid, errs := profile.Validate(prof)
	if !valid {
		for _, e := range errs {
			fmt.Println(e)
		}
		os.Exit(1)
	}
	fmt.Printf("profile %s is valid\n", args[0])
}

func suggestFunc(cmd *cobra.Command, args []string) {
	mapping := profile.SuggestFieldMapping(args)
	out, err := yaml.Marshal(mapping)
	if err != nil {
		root.Log.WithError(err).Error("Failed to encode mapping")
		os.Exit(1)
	}
	fmt.Print(string(out))
}

func mustLoad(bankKey string) *profile.BankProfile {
	prof, err := root.Profiles().LoadProfile(bankKey)
	if err != nil {
		root.Log.WithError(err).Error("Failed to load profile")
		os.Exit(1)
	}
	if prof == nil {
		root.Log.Error("No profile for bank key",
			logging.Field{Key: "bank", Value: bankKey})
		os.Exit(1)
	}
	return prof
}
