package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nurtas/bloomcast/internal/launcher"
)

func newLaunchCmd(r *rootState) *cobra.Command {
	var noTunnel bool

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Deploy the dashboard: server, public tunnel and keep-alive loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runLaunch(cmd.Context(), noTunnel)
		},
	}
	cmd.Flags().BoolVar(&noTunnel, "no-tunnel", false, "serve locally without the tunnel subprocess")
	return cmd
}

func (r *rootState) runLaunch(ctx context.Context, noTunnel bool) error {
	svc := r.buildService(ctx)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop(context.Background())

	go startSystemMetricsUpdater(ctx)

	var opts []launcher.Option
	if noTunnel {
		opts = append(opts, launcher.WithoutTunnel())
	}
	l := launcher.New(r.cfg, svc, buildHandler(ctx, svc), opts...)
	return l.Run(ctx)
}
