package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fivetwenty-io/psclient/internal/client"
	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewThreadsCommand creates the threads command group.
func NewThreadsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "threads",
		Aliases: []string{"thread"},
		Short:   "Follow server threads",
		Long:    "Check the progress of long-running server threads such as exports and loads",
	}

	cmd.AddCommand(newThreadsProgressCommand())
	cmd.AddCommand(newThreadsWaitCommand())

	return cmd
}

func newThreadsProgressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "progress ID",
		Short: "Show thread progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd.Context(), constants.DefaultHTTPTimeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			thread, err := c.Threads().Progress(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get thread progress: %w", err)
			}

			return renderThread(cmd.OutOrStdout(), thread)
		},
	}
}

func newThreadsWaitCommand() *cobra.Command {
	var (
		timeout  time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait ID",
		Short: "Wait for a thread to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd.Context(), timeout)
			defer cancel()

			c, err := newClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = c.Close() }()

			thread, err := waitForThread(ctx, c, args[0], interval, cmd.ErrOrStderr())
			if thread != nil {
				renderErr := renderThread(cmd.OutOrStdout(), thread)
				if err == nil {
					err = renderErr
				}
			}

			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultThreadWaitTimeout, "maximum time to wait")
	cmd.Flags().DurationVar(&interval, "interval", constants.DefaultThreadPollInterval, "initial polling interval")

	return cmd
}

// waitForThread polls until the thread finishes, reporting progress on w
// when verbose output is enabled.
func waitForThread(ctx context.Context, c *client.Client, id string, interval time.Duration, w io.Writer) (*pageseeder.Thread, error) {
	opts := &pageseeder.WaitOptions{InitialInterval: interval}

	if viper.GetBool("verbose") {
		opts.OnProgress = func(thread *pageseeder.Thread) {
			line := fmt.Sprintf("thread %s: %s", thread.ID, formatStatus(thread.Status))
			if thread.Processing != nil {
				line += " " + formatProgress(thread.Processing)
			}

			_, _ = fmt.Fprintln(w, line)
		}
	}

	thread, err := c.Threads().Wait(ctx, id, opts)
	if err != nil {
		return thread, fmt.Errorf("failed to wait for thread: %w", err)
	}

	return thread, nil
}

func renderThread(w io.Writer, thread *pageseeder.Thread) error {
	return render(w, outputFormat(), thread, func(w io.Writer) error {
		return renderProperties(w, threadRows(thread))
	})
}

// finishLoadingThread renders a loading zone thread, first waiting for it
// when wait is set.
func finishLoadingThread(ctx context.Context, cmd *cobra.Command, c *client.Client, thread *pageseeder.Thread, wait bool) error {
	if wait && thread.ID != "" {
		final, err := waitForThread(ctx, c, thread.ID, constants.DefaultThreadPollInterval, cmd.ErrOrStderr())
		if final != nil {
			thread = final
		}

		if err != nil {
			_ = renderThread(cmd.OutOrStdout(), thread)

			return err
		}
	}

	return renderThread(cmd.OutOrStdout(), thread)
}
