package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/config"
	"github.com/menukit/menustore/internal/ui"
	"github.com/menukit/menustore/pkg/version"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	noColor    bool
	headless   bool
}

// NewRootCmd builds the command tree around d.
func NewRootCmd(d *Dependencies) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "menustore",
		Short: "Inspect and maintain persisted menu definitions",
		Long: `menustore manages the user's customizable menus: the main menu bar and
the context menus. Each store keeps an editable profile copy next to the
factory defaults bundled with the application.

Profile copies are upgraded automatically when newer factory menus ship,
without losing user edits or resurrecting items the user deleted.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return d.prepare(cmd, opts)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("menustore %s\n", version.GetFullVersion()))

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "configuration file (default $"+config.EnvConfigPath+" or the profile directory)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colors and animations")
	pf.BoolVar(&opts.headless, "headless", false, "never prompt; fail when confirmation is required")

	root.AddCommand(
		newShowCmd(d),
		newWatchCmd(d),
		newValidateCmd(d),
		newUpgradeCmd(d),
		newResetCmd(d),
		newRemoveActionCmd(d),
		newConfigCmd(d),
	)
	return root
}

// prepare loads the configuration and applies global flags.
func (d *Dependencies) prepare(cmd *cobra.Command, opts *rootOptions) error {
	if opts.noColor || os.Getenv("NO_COLOR") != "" {
		d.Theme.NoColor = true
	}
	if opts.headless {
		d.Terminal.ForceHeadless(true)
	}

	cfg, err := d.Config.Load(config.ResolvePath(opts.configPath))
	if err != nil {
		return err
	}
	d.setupLogging(cfg, cmd.ErrOrStderr())
	return nil
}

// Execute runs the CLI with default dependencies.
func Execute() error {
	root := NewRootCmd(NewDependencies())
	err := root.Execute()
	if err != nil {
		theme := ui.NewTheme(os.Getenv("NO_COLOR") != "")
		fmt.Fprintln(os.Stderr, theme.Failure().Render("Error: "+err.Error()))
	}
	return err
}
