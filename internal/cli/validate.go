package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/codec"
	"github.com/menukit/menustore/internal/menu"
)

// ErrInvalidFiles is returned when validate finds at least one bad file.
var ErrInvalidFiles = errors.New("invalid menu files")

func newValidateCmd(d *Dependencies) *cobra.Command {
	var bundle bool
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check menu files for structural errors",
		Long: `Decode each file with the same rules used when loading menus: known
node types, valid and unique guids and menus only at the top level. The
command fails if any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.runValidate(cmd, args, bundle)
		},
	}
	cmd.Flags().BoolVar(&bundle, "bundle", false, "treat files as factory menus")
	return cmd
}

func (d *Dependencies) runValidate(cmd *cobra.Command, files []string, bundle bool) error {
	out := cmd.OutOrStdout()
	bar := d.Progress.Bar("Validating", len(files))

	var lines []string
	failed := 0
	for _, path := range files {
		line, ok := validateFile(d, path, bundle)
		lines = append(lines, line)
		if !ok {
			failed++
		}
		bar.Increment(1)
	}
	bar.Done()

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidFiles, failed, len(files))
	}
	return nil
}

func validateFile(d *Dependencies, path string, bundle bool) (string, bool) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return d.Theme.Failure().Render("✗ "+name) + ": " + err.Error(), false
	}
	root, control, err := codec.Decode(data, codec.Options{Bundle: bundle, IDs: menu.NewCounter()})
	if err != nil {
		return d.Theme.Failure().Render("✗ "+name) + ": " + err.Error(), false
	}

	all := root.ChildAt(0)
	items := 0
	all.Walk(func(n *menu.Node) bool {
		if n != all && n.Kind != menu.KindMenu {
			items++
		}
		return true
	})
	summary := fmt.Sprintf("%d menus, %d items", all.Len(), items)
	if control.Version != "" {
		summary += ", version " + control.Version
	}
	return d.Theme.OK().Render("✓ "+name) + " " + d.Theme.Dim().Render(summary), true
}
