package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/model"
	"github.com/menukit/menustore/internal/ui"
)

type resetOptions struct {
	store string
	menu  string
	item  string
	all   bool
	yes   bool
}

func newResetCmd(d *Dependencies) *cobra.Command {
	opts := &resetOptions{}
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore factory menus",
		Long: `Replace user customizations with the factory menus. Reset a single item
with --menu and --item, a whole menu with --menu, or every menu of the
store with --all. Resetting everything also forgets deleted items, so
future upgrades may bring them back.`,
		Example: `  menustore reset --menu main_file
  menustore reset --menu main_file --item cmd.new_tab
  menustore reset --store context --all --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return d.runReset(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.store, "store", "s", "main", "menu store to reset")
	f.StringVarP(&opts.menu, "menu", "m", "", "menu to reset")
	f.StringVar(&opts.item, "item", "", "action of a single item to reset (requires --menu)")
	f.BoolVar(&opts.all, "all", false, "reset every menu in the store")
	f.BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	cmd.MarkFlagsMutuallyExclusive("menu", "all")
	cmd.MarkFlagsOneRequired("menu", "all")
	return cmd
}

func (d *Dependencies) runReset(cmd *cobra.Command, opts *resetOptions) error {
	if opts.item != "" && opts.menu == "" {
		return errors.New("--item requires --menu")
	}

	target := "all " + opts.store + " menus"
	switch {
	case opts.item != "":
		target = fmt.Sprintf("%s in %s", opts.item, opts.menu)
	case opts.menu != "":
		target = opts.menu
	}
	if !opts.yes {
		ok, err := d.Confirm.Confirm("Reset "+target+"?", "Customizations are replaced by the factory menus.")
		if errors.Is(err, ui.ErrHeadless) {
			return fmt.Errorf("%w; pass --yes to confirm", err)
		}
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), d.Theme.Dim().Render("Nothing reset."))
			return nil
		}
	}

	s, err := d.openStore(cmd.Context(), opts.store)
	if err != nil {
		return err
	}
	defer s.close()
	m := s.model

	done := false
	sub := m.AddObserver(model.ObserverFuncs{
		OnReset: func(_ *model.Model, all bool) {
			if all {
				done = true
			}
		},
		OnChanged: func(*model.Model, *int64, string) { done = true },
	})
	defer m.RemoveObserver(sub)

	switch {
	case opts.all:
		err = m.ResetAll()
	case opts.item != "":
		err = resetItem(m, opts.menu, opts.item)
	default:
		err = m.ResetMenu(opts.menu)
	}
	if err != nil {
		return fmt.Errorf("reset %s: %w", target, err)
	}

	if err := s.wait(cmd.Context(), func() bool { return done }); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), d.Theme.OK().Render("Reset "+target+"."))
	return nil
}

func resetItem(m *model.Model, menuName, action string) error {
	mn := m.Menu(menuName)
	if mn == nil {
		return model.ErrNotFound
	}
	node := mn.FindByAction(action)
	if node == nil || node == mn {
		return model.ErrNotFound
	}
	return m.Reset(node)
}
