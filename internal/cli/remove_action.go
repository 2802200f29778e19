package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveActionCmd(d *Dependencies) *cobra.Command {
	var store, menuName string
	cmd := &cobra.Command{
		Use:   "remove-action ACTION",
		Short: "Remove every item bound to an action",
		Long: `Remove each item whose action matches ACTION, in every menu of the store
or only in the menu named by --menu. Removed factory items are remembered
so later upgrades do not bring them back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := d.openStore(cmd.Context(), store)
			if err != nil {
				return err
			}
			defer s.close()

			scope := s.model.Root()
			if menuName != "" {
				if scope = s.model.Menu(menuName); scope == nil {
					return fmt.Errorf("no menu %q in store %s", menuName, store)
				}
			}
			n, err := s.model.RemoveAction(scope, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if n == 0 {
				fmt.Fprintln(out, d.Theme.Dim().Render("No items bound to "+args[0]+"."))
				return nil
			}
			fmt.Fprintln(out, d.Theme.OK().Render(fmt.Sprintf("Removed %d item(s) bound to %s.", n, args[0])))
			return nil
		},
	}
	cmd.Flags().StringVarP(&store, "store", "s", "main", "menu store to edit")
	cmd.Flags().StringVarP(&menuName, "menu", "m", "", "limit removal to one menu")
	return cmd
}
