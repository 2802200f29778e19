package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/menu"
	"github.com/menukit/menustore/internal/ui"
)

type showOptions struct {
	store string
	menu  string
	ids   bool
}

func newShowCmd(d *Dependencies) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a menu store as a tree",
		Long: `Print the menus of a store as a tree. The profile copy is loaded,
upgraded if the factory menus are newer, and rendered. Items the user
added are marked with +, edited factory items with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return d.runShow(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.store, "store", "s", "main", "menu store to show")
	cmd.Flags().StringVarP(&opts.menu, "menu", "m", "", "show only the named menu")
	cmd.Flags().BoolVar(&opts.ids, "ids", false, "include session ids and guids")
	return cmd
}

func (d *Dependencies) runShow(cmd *cobra.Command, opts *showOptions) error {
	s, err := d.openStore(cmd.Context(), opts.store)
	if err != nil {
		return err
	}
	defer s.close()

	m := s.model
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, d.Theme.Title().Render(fmt.Sprintf("%s menus (version %s)", m.Name(), m.Control().Version)))

	var menus []*menu.Node
	if opts.menu != "" {
		mn := m.Menu(opts.menu)
		if mn == nil {
			return fmt.Errorf("no menu %q in store %s", opts.menu, m.Name())
		}
		menus = append(menus, mn)
	} else {
		menus = m.AllMenus().Children()
	}
	for i, mn := range menus {
		renderNode(out, d.Theme, mn, "", i == len(menus)-1, opts.ids)
	}
	return nil
}

// renderNode prints n and its subtree with box-drawing guides.
func renderNode(w io.Writer, theme *ui.Theme, n *menu.Node, prefix string, last, ids bool) {
	branch, next := "├── ", "│   "
	if last {
		branch, next = "└── ", "    "
	}
	fmt.Fprintln(w, prefix+branch+describe(theme, n, ids))
	for i, c := range n.Children() {
		renderNode(w, theme, c, prefix+next, i == n.Len()-1, ids)
	}
}

// describe renders one tree line.
func describe(theme *ui.Theme, n *menu.Node, ids bool) string {
	if n.Kind == menu.KindSeparator {
		return theme.Dim().Render("────────")
	}

	var parts []string
	label := n.Action
	if n.HasCustomTitle {
		label = fmt.Sprintf("%q", n.Title)
	}
	switch n.Origin {
	case menu.OriginUser:
		label = "+" + label
	case menu.OriginModifiedBundled:
		label = "*" + label
	}
	parts = append(parts, label)

	if n.HasCustomTitle {
		parts = append(parts, theme.Label().Render(n.Action))
	}
	if n.Kind != menu.KindCommand {
		parts = append(parts, theme.Dim().Render("["+n.Kind.String()+"]"))
	}
	if n.Parameter != "" {
		parts = append(parts, theme.Dim().Render("param="+n.Parameter))
	}
	if n.ShowShortcut != nil && !*n.ShowShortcut {
		parts = append(parts, theme.Dim().Render("no-shortcut"))
	}
	if ids {
		parts = append(parts, theme.Dim().Render(fmt.Sprintf("#%d %s", n.ID, n.GUID)))
	}
	return strings.Join(parts, " ")
}
