package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olivoil/nymview/internal/mixnet"
)

func newStatusCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the nym-client connection and print this client's address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := f.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.ConnectTimeout.Std())
			defer cancel()

			c, err := mixnet.Dial(ctx, cfg.Client.URL, zap.NewNop())
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nym-client: %s\n", cfg.Client.URL)
			fmt.Fprintf(out, "address:    %s\n", c.LocalAddress())
			return nil
		},
	}
}
