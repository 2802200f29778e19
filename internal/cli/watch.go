package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/menukit/menustore/internal/resources"
	"github.com/menukit/menustore/internal/watch"
)

func newWatchCmd(d *Dependencies) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a menu store and reprint it whenever its profile file changes",
		Long: `Print the menus of a store like show, then keep watching the profile
file and print the tree again after every change made by another process.
Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return d.runWatch(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.store, "store", "s", "main", "menu store to watch")
	cmd.Flags().StringVarP(&opts.menu, "menu", "m", "", "show only the named menu")
	cmd.Flags().BoolVar(&opts.ids, "ids", false, "include session ids and guids")
	return cmd
}

func (d *Dependencies) runWatch(cmd *cobra.Command, opts *showOptions) error {
	res, ok := resources.Lookup(opts.store)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownStore, opts.store)
	}
	cfg := d.Config.Get()
	if err := os.MkdirAll(cfg.Paths.ProfileDir, 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	w, err := watch.New(filepath.Join(cfg.Paths.ProfileDir, res.File),
		watch.WithLogger(d.Logger.With("module", "menu.watch")))
	if err != nil {
		return err
	}
	defer w.Close()

	if err := d.runShow(cmd, opts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	err = w.Run(ctx, func() {
		fmt.Fprintln(cmd.OutOrStdout())
		if err := d.runShow(cmd, opts); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), d.Theme.Failure().Render(err.Error()))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
