package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/terminal-bench/gridfeed/pkg/circuit"
)

// Status classifies the final outcome of fetching one document.
type Status int

const (
	// OK means the document was retrieved and Body holds its bytes.
	OK Status = iota
	// NotFound means the source has no document at this locator: the
	// window has no data yet or predates retention. Not an error.
	NotFound
	// Fatal means the retry budget was exhausted or the source
	// answered with a permanent failure. The caller treats it as zero
	// records for this document.
	Fatal
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotFound:
		return "not-found"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the typed result of one fetch. Exactly one of Body (on
// OK) and Err (on Fatal) is meaningful; NotFound carries neither.
type Outcome struct {
	Status Status
	Body   []byte
	Err    error
}

var errNotFound = errors.New("document not found")

type permanentError struct {
	status string
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("permanent upstream error: %s", e.status)
}

// Client performs document fetches against the reports root, retrying
// transient failures with exponential backoff and failing fast through
// a circuit breaker once the upstream looks down. The http.Client is
// pooled and shared for the life of the process.
type Client struct {
	http     *http.Client
	base     string
	breaker  *circuit.Breaker
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

// Options configures a Client. Zero values get production defaults.
type Options struct {
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
	Logger   *slog.Logger
}

// NewClient creates a fetch client rooted at base.
func NewClient(base string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		base:     base,
		breaker:  circuit.NewBreaker(circuit.Config{MaxFailures: opts.Attempts * 2, Timeout: time.Minute}),
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		log:      opts.Logger,
	}
}

// Fetch retrieves the document at path (relative to the reports root).
// It never returns a transient status: timeouts, connection errors and
// 5xx responses are retried up to the attempt budget and only then
// surface as Fatal.
func (c *Client) Fetch(ctx context.Context, path string) Outcome {
	url := c.base + path

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Outcome{Status: Fatal, Err: ctx.Err()}
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		body, err := c.get(ctx, url)
		switch {
		case err == nil:
			return Outcome{Status: OK, Body: body}
		case errors.Is(err, errNotFound):
			return Outcome{Status: NotFound}
		case errors.Is(err, circuit.ErrOpen):
			return Outcome{Status: Fatal, Err: err}
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return Outcome{Status: Fatal, Err: err}
		}

		lastErr = err
		c.log.Debug("transient fetch failure",
			"path", path,
			"attempt", attempt+1,
			"attempts", c.attempts,
			"error", err)
	}

	return Outcome{Status: Fatal, Err: fmt.Errorf("retry budget exhausted for %s: %w", path, lastErr)}
}

// get performs a single attempt. Only transport errors and 5xx
// responses count against the circuit breaker; absence of a document
// is not an upstream failure.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var (
		body     []byte
		finalErr error
	)
	err := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			finalErr = &permanentError{status: err.Error()}
			return nil
		}
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			finalErr = errNotFound
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error: %s", resp.Status)
		case resp.StatusCode >= 400:
			finalErr = &permanentError{status: resp.Status}
			return nil
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	if finalErr != nil {
		return nil, finalErr
	}
	return body, nil
}
