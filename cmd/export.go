package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/db"
	"github.com/sells-group/parroquia-maps/internal/export"
	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/server"
	"github.com/sells-group/parroquia-maps/internal/view"
)

var (
	exportFormat  string
	exportViews   []string
	exportScope   string
	exportOut     string
	exportK       int
	exportReplace bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write views to GeoJSON, XLSX, SQLite or PostgreSQL",
	Long:  "Builds each requested view and writes it to the chosen sink. Tabular sinks keep one row per parish, keyed by view, scope and index.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		scope, err := parish.ParseScope(exportScope)
		if err != nil {
			return err
		}
		mode := "view"
		if format == export.FormatPostgres {
			mode = "export-postgres"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		var sink export.Sink
		switch format {
		case export.FormatGeoJSON:
			if len(exportViews) > 1 {
				return eris.New("export: geojson writes one view per file")
			}
			sink = export.GeoJSON{Path: exportOut, Out: cmd.OutOrStdout()}
		case export.FormatXLSX:
			if len(exportViews) > 1 {
				return eris.New("export: xlsx writes one view per workbook")
			}
			if exportOut == "" || exportOut == "-" {
				return eris.New("export: xlsx needs --out")
			}
			sink = export.XLSX{Path: exportOut, Sheet: cfg.Export.Sheet}
		case export.FormatSQLite:
			dsn := exportOut
			if dsn == "" || dsn == "-" {
				dsn = cfg.Export.SQLitePath
			}
			sink = export.SQLite{DSN: dsn}
		case export.FormatPostgres:
			pool, err := db.Connect(ctx, cfg.Export.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			sink = export.Postgres{Pool: pool, Table: cfg.Export.Table, Replace: exportReplace}
		}

		return runExport(ctx, newBuilder(cfg), exportViews, scope, exportK, sink)
	},
}

func runExport(ctx context.Context, views server.Views, names []string, scope parish.Scope, k int, sink export.Sink) error {
	for _, name := range names {
		if err := runView(ctx, views, name, scope, k, sink); err != nil {
			return eris.Wrapf(err, "export: view %s", name)
		}
	}
	zap.L().Info("export complete", zap.Strings("views", names))
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatGeoJSON, "sink: geojson, xlsx, sqlite or postgres")
	exportCmd.Flags().StringSliceVar(&exportViews, "view", []string{view.Sectors}, "views to export")
	exportCmd.Flags().StringVar(&exportScope, "scope", string(parish.ScopeAll), "parishes to export: todas, rurales or urbanas")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file or sqlite database path")
	exportCmd.Flags().IntVar(&exportK, "k", 0, "number of clusters (default from config)")
	exportCmd.Flags().BoolVar(&exportReplace, "replace", false, "postgres: delete the view's rows and COPY instead of upserting")
	rootCmd.AddCommand(exportCmd)
}
