package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/codec"
	"github.com/menukit/menustore/internal/diff"
	"github.com/menukit/menustore/internal/menu"
	"github.com/menukit/menustore/internal/owner"
	"github.com/menukit/menustore/internal/storage"
	"github.com/menukit/menustore/internal/upgrade"
)

type upgradeOptions struct {
	profile string
	bundled string
	write   bool
	yes     bool
}

func newUpgradeCmd(d *Dependencies) *cobra.Command {
	opts := &upgradeOptions{}
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Preview or apply a factory menu upgrade to a profile file",
		Long: `Merge newer factory menus into a profile file. Items are matched by guid:
new factory items are added unless the user deleted them, factory items
that are no longer shipped are dropped unless the user touched them.

Without --write the merge is only previewed as a report and a diff. With
--write the profile is upgraded in place and the previous file is kept as
a backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return d.runUpgrade(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.profile, "profile", "", "profile menu file")
	f.StringVar(&opts.bundled, "bundled", "", "factory menu file")
	f.BoolVar(&opts.write, "write", false, "apply the upgrade")
	f.BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("bundled")
	return cmd
}

func (d *Dependencies) runUpgrade(cmd *cobra.Command, opts *upgradeOptions) error {
	out := cmd.OutOrStdout()
	profile, err := os.ReadFile(opts.profile)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	bundled, err := os.ReadFile(opts.bundled)
	if err != nil {
		return fmt.Errorf("read bundled: %w", err)
	}

	bundledVersion, err := codec.ReadVersion(bundled)
	if err != nil {
		return fmt.Errorf("bundled version: %w", err)
	}
	profileVersion, _ := codec.ReadVersion(profile)
	need, err := upgrade.NeedsUpgrade(bundledVersion, profileVersion)
	if err != nil {
		return err
	}
	if !need {
		fmt.Fprintln(out, d.Theme.OK().Render(fmt.Sprintf("%s is up to date (version %s)", filepath.Base(opts.profile), profileVersion)))
		return nil
	}

	merged, report, err := upgrade.Merge(profile, bundled)
	if err != nil {
		return err
	}
	fmt.Fprint(out, d.Theme.Markdown(upgradeReport(report, profile, merged)))
	if patch := diff.Unified(filepath.Base(opts.profile), profile, merged); patch != "" {
		fmt.Fprintln(out, d.Theme.Box().Render(strings.TrimSuffix(patch, "\n")))
	}

	if !opts.write {
		return nil
	}
	if !opts.yes {
		ok, err := d.Confirm.Confirm("Apply upgrade?", "The current file is kept as "+filepath.Base(opts.profile)+d.backupSuffix())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, d.Theme.Dim().Render("Upgrade not applied."))
			return nil
		}
	}
	return d.applyUpgrade(cmd.Context(), out, opts)
}

// applyUpgrade loads the profile through the storage layer, which merges,
// backs up and rewrites it.
func (d *Dependencies) applyUpgrade(ctx context.Context, out io.Writer, opts *upgradeOptions) error {
	loop := owner.NewLoop()
	st := storage.New(storage.Config{
		ProfilePath:  opts.profile,
		BundledFS:    os.DirFS(filepath.Dir(opts.bundled)),
		BundledName:  filepath.Base(opts.bundled),
		BackupSuffix: d.backupSuffix(),
	}, loop, storage.WithLogger(d.Logger.With("module", "menu.storage")))
	defer st.Close()

	spin := d.Progress.Spinner("Upgrading " + filepath.Base(opts.profile))
	var res *storage.LoadResult
	st.Load(storage.LoadRequest{Done: func(r *storage.LoadResult) { res = r }})

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	err := loop.RunUntil(ctx, func() bool { return res != nil })
	spin.Stop()
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	if res.Err != nil {
		return res.Err
	}
	if !res.Upgraded {
		return fmt.Errorf("upgrade: %s could not be merged, see log", filepath.Base(opts.profile))
	}

	msg := fmt.Sprintf("Upgraded to version %s", res.Report.ToVersion)
	if st.BackupState() == storage.BackupAttempted {
		msg += ", backup at " + st.Config().BackupPath()
	}
	fmt.Fprintln(out, d.Theme.OK().Render(msg))
	return nil
}

func (d *Dependencies) backupSuffix() string {
	if cfg := d.Config.Get(); cfg != nil && cfg.Storage.BackupSuffix != "" {
		return cfg.Storage.BackupSuffix
	}
	return storage.DefaultBackupSuffix
}

// upgradeReport describes a merge in markdown, naming nodes by action
// where the documents allow it.
func upgradeReport(r upgrade.Report, profile, merged []byte) string {
	before := actionsByGUID(profile)
	after := actionsByGUID(merged)

	var sb strings.Builder
	from := r.FromVersion
	if from == "" {
		from = "unversioned"
	}
	fmt.Fprintf(&sb, "# Menu upgrade\n\n`%s` → `%s`\n\n", from, r.ToVersion)
	if !r.Changed() {
		sb.WriteString("No items added or removed; only the version changes.\n")
		return sb.String()
	}
	writeGUIDs(&sb, "Added", r.Added, after)
	writeGUIDs(&sb, "Removed", r.Removed, before)
	return sb.String()
}

func writeGUIDs(sb *strings.Builder, heading string, guids []string, names map[string]string) {
	if len(guids) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s (%d)\n\n", heading, len(guids))
	for _, g := range guids {
		if name := names[g]; name != "" {
			fmt.Fprintf(sb, "- `%s` %s\n", name, g)
		} else {
			fmt.Fprintf(sb, "- %s\n", g)
		}
	}
	sb.WriteString("\n")
}

// actionsByGUID decodes data and maps guids to actions. Undecodable
// documents yield an empty map.
func actionsByGUID(data []byte) map[string]string {
	names := make(map[string]string)
	root, _, err := codec.Decode(data, codec.Options{IDs: menu.NewCounter()})
	if err != nil {
		return names
	}
	root.Walk(func(n *menu.Node) bool {
		if n.Action != "" {
			names[n.GUID] = n.Action
		}
		return true
	})
	return names
}
