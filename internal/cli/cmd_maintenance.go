package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReconcileCmd(opts *GlobalOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair applications of completed interviews",
		Long:  "Bring applications in line with completed interviews whose result did not reach them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			repaired, err := c.Reconcile(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "repaired %d application(s)\n", repaired)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum interviews to inspect")
	return cmd
}

func newExpireStaleCmd(opts *GlobalOpts) *cobra.Command {
	var (
		olderThan time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "expire-stale",
		Short: "Terminate interviews left open too long",
		Long:  "Terminate started interviews older than --older-than with reason abandoned.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			expired, err := c.ExpireStale(cmd.Context(), olderThan, limit)
			if err != nil {
				return fmt.Errorf("expire-stale: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "expired %d interview(s)\n", expired)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 4*time.Hour, "age after which an open interview is abandoned")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum interviews to expire")
	return cmd
}
