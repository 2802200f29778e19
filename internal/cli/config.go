package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/config"
)

func newConfigCmd(d *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(d), newConfigInitCmd(d))
	return cmd
}

func newConfigShowCmd(d *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Marshal(d.Config.Get())
			if err != nil {
				return err
			}
			source := "defaults"
			if d.Config.FromFile() {
				source = d.Config.Path()
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, d.Theme.Dim().Render("# source: "+source))
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigInitCmd(d *Dependencies) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if d.Config.FromFile() && !force {
				return errors.New(d.Config.Path() + " already exists; pass --force to overwrite")
			}
			if err := d.Config.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Theme.OK().Render("Wrote "+d.Config.Path()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
