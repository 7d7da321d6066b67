package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/export"
	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/server"
	"github.com/sells-group/parroquia-maps/internal/view"
)

var (
	viewScope string
	viewK     int
	viewOut   string
)

var viewCmd = &cobra.Command{
	Use:       "view <growth|population|sectors|clusters>",
	Short:     "Build a view and write it as GeoJSON",
	Args:      cobra.ExactArgs(1),
	ValidArgs: view.Names,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scope, err := parish.ParseScope(viewScope)
		if err != nil {
			return err
		}
		if err := cfg.Validate("view"); err != nil {
			return err
		}
		sink := export.GeoJSON{Path: viewOut, Out: cmd.OutOrStdout()}
		return runView(ctx, newBuilder(cfg), args[0], scope, viewK, sink)
	},
}

func runView(ctx context.Context, views server.Views, name string, scope parish.Scope, k int, sink export.Sink) error {
	tbl, err := views.Build(ctx, name, scope, k)
	if err != nil {
		return err
	}
	n, err := sink.Write(ctx, tbl)
	if err != nil {
		return err
	}
	zap.L().Info("view written",
		zap.String("view", name),
		zap.String("scope", string(tbl.Scope)),
		zap.Int64("rows", n),
	)
	return nil
}

func init() {
	viewCmd.Flags().StringVar(&viewScope, "scope", string(parish.ScopeAll), "parishes to draw: todas, rurales or urbanas")
	viewCmd.Flags().IntVar(&viewK, "k", 0, "number of clusters (default from config)")
	viewCmd.Flags().StringVarP(&viewOut, "out", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(viewCmd)
}
