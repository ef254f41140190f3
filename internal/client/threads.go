package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fivetwenty-io/psclient/internal/constants"
	"github.com/fivetwenty-io/psclient/internal/http"
	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

var errThreadRunning = errors.New("thread still running")

// ThreadsClient implements pageseeder.ThreadsClient.
type ThreadsClient struct {
	httpClient *http.Client
}

// NewThreadsClient creates a new threads client.
func NewThreadsClient(httpClient *http.Client) *ThreadsClient {
	return &ThreadsClient{
		httpClient: httpClient,
	}
}

// Progress implements pageseeder.ThreadsClient.Progress.
func (c *ThreadsClient) Progress(ctx context.Context, id string) (*pageseeder.Thread, error) {
	const op = "get thread progress"

	err := checkParams(op, param{"id", id})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, servicePath("threads", id, "progress"), nil)
	if err != nil {
		return nil, fmt.Errorf("getting thread progress: %w", err)
	}

	var thread pageseeder.Thread

	err = http.DecodeXML(op, resp, &thread)
	if err != nil {
		return nil, err
	}

	return &thread, nil
}

// Wait implements pageseeder.ThreadsClient.Wait. It polls with exponential
// backoff until the thread leaves the running states. A thread that ends in
// error, failed or cancelled returns the last state with ErrThreadFailed.
func (c *ThreadsClient) Wait(ctx context.Context, id string, opts *pageseeder.WaitOptions) (*pageseeder.Thread, error) {
	err := checkParams("wait for thread", param{"id", id})
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &pageseeder.WaitOptions{}
	}

	var thread *pageseeder.Thread

	operation := func() error {
		current, err := c.Progress(ctx, id)
		if err != nil {
			if pageseeder.IsRetryable(err) {
				return err
			}

			return backoff.Permanent(err)
		}

		thread = current

		if opts.OnProgress != nil {
			opts.OnProgress(current)
		}

		if current.Status.Running() {
			return errThreadRunning
		}

		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(newPollBackOff(opts), ctx))

	switch {
	case err == nil:
	case errors.Is(err, errThreadRunning):
		return thread, &pageseeder.TimeoutError{Operation: "wait for thread " + id, Err: err}
	default:
		return thread, fmt.Errorf("waiting for thread: %w", err)
	}

	if thread.Status.Failed() {
		return thread, fmt.Errorf("%w: %s %s", pageseeder.ErrThreadFailed, thread.Status, thread.Message)
	}

	return thread, nil
}

func newPollBackOff(opts *pageseeder.WaitOptions) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = durationOr(opts.InitialInterval, constants.DefaultThreadPollInterval)
	b.MaxInterval = durationOr(opts.MaxInterval, constants.MaxThreadPollInterval)
	b.MaxElapsedTime = opts.MaxElapsed
	b.Reset()

	return b
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}

	return def
}
