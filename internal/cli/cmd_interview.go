package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mentorhub/interviews/internal/models"
)

func newTerminateCmd(opts *GlobalOpts) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "terminate <interview-id>",
		Short: "Terminate an interview",
		Long:  "Terminate any candidate's open interview. Needs an admin token.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interviewID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid interview id %q", args[0])
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.AdminTerminate(cmd.Context(), interviewID, reason); err != nil {
				return fmt.Errorf("terminate: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "terminated %s (%s)\n", interviewID, models.NormalizeTerminationReason(reason))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", models.ReasonOther, "termination reason")
	return cmd
}

func newGetCmd(opts *GlobalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "get <interview-id>",
		Short: "Print an interview as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interviewID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid interview id %q", args[0])
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			rec, err := c.Get(cmd.Context(), interviewID)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print interviewctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "interviewctl %s\n", Version)
		},
	}
}
