package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/server"
)

var classifyScope string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the sector of every parish and the rule that assigned it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scope, err := parish.ParseScope(classifyScope)
		if err != nil {
			return err
		}
		if err := cfg.Validate("view"); err != nil {
			return err
		}
		return runClassify(ctx, newBuilder(cfg), scope, cmd.OutOrStdout())
	},
}

func runClassify(ctx context.Context, views server.Views, scope parish.Scope, out io.Writer) error {
	ex, err := views.Explain(ctx, scope)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME\tTYPE\tZONE\tSECTOR\tRULE")
	_, _ = fmt.Fprintln(w, "-\t----\t----\t----\t------\t----")
	for _, e := range ex {
		rule := string(e.Match.Tier)
		if e.Match.Key != "" {
			rule += " " + e.Match.Key
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.Index, e.Name, dash(e.Type), dash(e.ZoneAdmin), e.Match.Sector, rule)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	classifyCmd.Flags().StringVar(&classifyScope, "scope", string(parish.ScopeAll), "parishes to classify: todas, rurales or urbanas")
	rootCmd.AddCommand(classifyCmd)
}
