package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nurtas/bloomcast/internal/adapters/sheets"
	"github.com/nurtas/bloomcast/internal/config"
	"github.com/nurtas/bloomcast/internal/domain/stores"
)

func newCheckCmd(r *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the deployment environment and report what will run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runCheck(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// runCheck inspects the environment the launch command would use. Every
// finding is informational; the command itself always succeeds so operators
// can read the whole report.
func (r *rootState) runCheck(ctx context.Context, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush() //nolint:errcheck // best-effort report output

	report := func(name, status, detail string) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, detail)
	}

	// Google credentials and spreadsheet.
	creds, err := sheets.ValidateCredentialsFile(r.cfg.CredentialsPath)
	switch {
	case err != nil:
		report("credentials", "demo", fmt.Sprintf("%s: %v", r.cfg.CredentialsPath, err))
	default:
		report("credentials", "ok", creds.ClientEmail+" ("+creds.ProjectID+")")
	}

	url := r.cfg.SpreadsheetURL
	if url == "" || url == config.SpreadsheetURLSentinel {
		report("spreadsheet", "demo", "no spreadsheet URL configured")
	} else if id, err := sheets.SpreadsheetIDFromURL(url); err != nil {
		report("spreadsheet", "fail", err.Error())
	} else {
		report("spreadsheet", "ok", "document "+id)
	}

	// Store network configuration.
	mgr := stores.NewManager(r.cfg.StoresConfigPath)
	if err := mgr.Load(ctx); err != nil {
		report("stores", "fail", err.Error())
	} else {
		report("stores", "ok", fmt.Sprintf("%d stores, %d active", len(mgr.All()), len(mgr.Active())))
	}

	// Artifact locations.
	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		report("data dir", "fail", err.Error())
	} else {
		report("data dir", "ok", r.cfg.DataDir)
	}
	if _, err := os.Stat(r.cfg.DBPath); err != nil {
		report("database", "new", r.cfg.DBPath+" will be created")
	} else {
		report("database", "ok", r.cfg.DBPath)
	}

	// Tunnel binary.
	fields := strings.Fields(r.cfg.TunnelCommand)
	if len(fields) == 0 {
		report("tunnel", "off", "no tunnel command configured")
	} else if path, err := exec.LookPath(fields[0]); err != nil {
		report("tunnel", "fail", fields[0]+" not found in PATH")
	} else {
		report("tunnel", "ok", path)
	}

	// POS exports.
	for _, name := range []string{"inspiro_sales_export.csv", "inspiro_inventory_export.csv"} {
		path := filepath.Join(r.cfg.POSExportDir, name)
		if _, err := os.Stat(path); err != nil {
			report("pos export", "demo", name+" missing, demo data will be generated")
		} else {
			report("pos export", "ok", path)
		}
	}

	return nil
}
