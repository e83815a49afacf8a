// Package cli provides the cobra command tree for interviewctl.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mentorhub/interviews/internal/client"
	"github.com/mentorhub/interviews/internal/logger"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// GlobalOpts holds options shared by every command.
type GlobalOpts struct {
	APIURL   string
	Token    string
	Retries  int
	Timeout  time.Duration
	LogLevel string
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &GlobalOpts{}

	rootCmd := &cobra.Command{
		Use:   "interviewctl",
		Short: "Operate the AI interview lifecycle service",
		Long: `interviewctl - operator tool for the AI interview lifecycle service

It runs maintenance jobs against a running API, terminates interviews on
behalf of candidates and replays proctoring scripts locally.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(logger.Config{Level: opts.LogLevel, Format: "text", Output: cmd.ErrOrStderr()})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.APIURL, "api-url", envOr("INTERVIEWS_API_URL", "http://localhost:8080/api/v1"), "lifecycle API base url")
	flags.StringVar(&opts.Token, "token", os.Getenv("INTERVIEWS_TOKEN"), "bearer token (default $INTERVIEWS_TOKEN)")
	flags.IntVar(&opts.Retries, "retries", 3, "retries for failed requests")
	flags.DurationVar(&opts.Timeout, "timeout", 15*time.Second, "per request timeout")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newReconcileCmd(opts),
		newExpireStaleCmd(opts),
		newTerminateCmd(opts),
		newGetCmd(opts),
		newProctorCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given streams.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func (o *GlobalOpts) client() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:  o.APIURL,
		Token:    o.Token,
		RetryMax: o.Retries,
		Timeout:  o.Timeout,
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
