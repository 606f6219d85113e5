// Package keepcmder
package keepcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/mnemosyneco/keep/cmd/keep/config"
	historycmder "github.com/mnemosyneco/keep/cmd/keep/history"
	initcmder "github.com/mnemosyneco/keep/cmd/keep/init"
	optimizecmder "github.com/mnemosyneco/keep/cmd/keep/optimize"
	servecmder "github.com/mnemosyneco/keep/cmd/keep/serve"
	statuscmder "github.com/mnemosyneco/keep/cmd/keep/status"
	versioncmder "github.com/mnemosyneco/keep/cmd/version"
)

const keepLongDesc string = `Keep is autonomous capacity management for agent memory stores.

It scores every stored memory's retention value and evicts the lowest-value
records whenever a collection outgrows its configured limits.

Common commands:
  keep serve           Run the autonomous optimization loop
  keep optimize        Run a single optimization pass
  keep status          Show capacity usage
  keep history         Show past optimization runs`

const keepShortDesc string = "Keep - Memory Storage Optimization"

func NewKeepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keep",
		Short: keepShortDesc,
		Long:  keepLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .keep/ directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(optimizecmder.NewOptimizeCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
