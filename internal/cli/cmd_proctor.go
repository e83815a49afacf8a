package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mentorhub/interviews/internal/proctor"
)

func newProctorCmd(opts *GlobalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proctor",
		Short: "Proctoring tools",
	}
	cmd.AddCommand(newProctorReplayCmd(), newProctorRunCmd(opts))
	return cmd
}

func newProctorReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay a proctoring script",
		Long: `Replay a proctoring script through the state machine and print every transition.

Each line is "<offset> <event>" where event is one of granted, denied, leave,
enter or esc. Use - to read the script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			steps, err := proctor.ParseScript(r)
			if err != nil {
				return err
			}
			res := proctor.Replay(steps)

			out := cmd.OutOrStdout()
			for _, tr := range res.Transitions {
				_, _ = fmt.Fprintf(out, "%8s  %-18s %-11s -> %-11s%s\n",
					tr.Offset, tr.Event, tr.From, tr.To, describeEffects(tr.Effects))
			}
			if res.Terminated {
				_, _ = fmt.Fprintf(out, "terminated at %s: %s\n", res.At, res.Reason)
			} else {
				_, _ = fmt.Fprintf(out, "not terminated, final state %s\n", res.Final)
			}
			return nil
		},
	}
}

func describeEffects(fx proctor.Effects) string {
	var parts []string
	if fx.StartCountdown {
		parts = append(parts, "start countdown")
	}
	if fx.StopCountdown {
		parts = append(parts, "stop countdown")
	}
	if fx.ShowWarning {
		parts = append(parts, fmt.Sprintf("warn %d", fx.Remaining))
	}
	if fx.HideWarning {
		parts = append(parts, "hide warning")
	}
	if fx.Terminate {
		parts = append(parts, "terminate "+fx.Reason)
	}
	if len(parts) == 0 {
		return ""
	}
	return "  [" + strings.Join(parts, ", ") + "]"
}

func newProctorRunCmd(opts *GlobalOpts) *cobra.Command {
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "run <interview-id>",
		Short: "Proctor an interview from the terminal",
		Long: `Run a live proctoring session for an interview. Each stdin line is an
event: leave, enter or esc. Termination is reported with the candidate token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interviewID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid interview id %q", args[0])
			}
			c, err := opts.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			monitor := proctor.NewMonitor(proctor.MonitorConfig{
				Screen:      terminalScreen{out: out},
				Display:     terminalDisplay{out: out},
				Coordinator: proctor.NewCoordinator(c, interviewID, opts.Timeout),
				Redirect: func(reason string) {
					_, _ = fmt.Fprintf(out, "session ended: %s\n", reason)
				},
				SettleDelay: settle,
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go feedEvents(ctx, cmd.InOrStdin(), monitor, cancel)

			_, err = monitor.Run(ctx)
			if err != nil && ctx.Err() != nil && cmd.Context().Err() == nil {
				// stdin closed before the session ended
				_, _ = fmt.Fprintln(out, "input closed, session left open")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", proctor.DefaultSettleDelay, "delay between releasing full-screen and redirecting")
	return cmd
}

// feedEvents posts one event per input line and cancels when input ends
func feedEvents(ctx context.Context, in io.Reader, monitor *proctor.Monitor, done context.CancelFunc) {
	defer done()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		var err error
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "leave":
			err = monitor.FullscreenChanged(false)
		case "enter":
			err = monitor.FullscreenChanged(true)
		case "esc":
			err = monitor.ExitKeyPressed()
		default:
			continue
		}
		if err != nil || ctx.Err() != nil {
			return
		}
	}
}

type terminalScreen struct {
	out io.Writer
}

func (s terminalScreen) RequestFullscreen(context.Context) error {
	_, _ = fmt.Fprintln(s.out, "full-screen engaged")
	return nil
}

func (s terminalScreen) ExitFullscreen(context.Context) error {
	_, _ = fmt.Fprintln(s.out, "full-screen released")
	return nil
}

type terminalDisplay struct {
	out io.Writer
}

func (d terminalDisplay) ShowWarning(remaining int) {
	_, _ = fmt.Fprintf(d.out, "return to full-screen within %ds\n", remaining)
}

func (d terminalDisplay) HideWarning() {
	_, _ = fmt.Fprintln(d.out, "warning cleared")
}
