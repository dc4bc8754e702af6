package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nurtas/bloomcast/internal/app"
)

func newForecastCmd(r *rootState) *cobra.Command {
	var (
		store string
		days  int
		out   string
		push  bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Generate a forecast and print, save or upload it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runForecast(cmd.Context(), cmd.OutOrStdout(), store, days, out, push)
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "store id; empty generates the whole network")
	cmd.Flags().IntVar(&days, "days", 0, "forecast horizon; 0 uses the store's configured horizon")
	cmd.Flags().StringVar(&out, "out", "", "write the rows as JSON to this file")
	cmd.Flags().BoolVar(&push, "push", false, "upload the rows to the configured spreadsheet")
	return cmd
}

func (r *rootState) runForecast(ctx context.Context, w io.Writer, store string, days int, out string, push bool) error {
	svc := r.buildService(ctx)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop(context.Background())

	rows, err := svc.GenerateForecast(ctx, store, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "generated %d forecast rows\n", len(rows))

	if out != "" {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil { //nolint:gosec // forecast rows are not secret
			return err
		}
		fmt.Fprintf(w, "written to %s\n", out)
	}

	if push {
		if err := svc.PushForecast(ctx, rows); err != nil {
			if errors.Is(err, app.ErrDemoMode) {
				return fmt.Errorf("cannot push in demo mode: configure credentials and a spreadsheet URL first")
			}
			return err
		}
		fmt.Fprintln(w, "uploaded to the spreadsheet")
	}
	return nil
}
