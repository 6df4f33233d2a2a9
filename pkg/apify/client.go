package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
	"igprofile/pkg/models"
	"igprofile/pkg/retry"
)

// ErrWaitTimeout is returned by WaitForRun when the run did not finish
// before the wait deadline.
var ErrWaitTimeout = errs.New(errs.ErrorTypeRemote, "actor run did not finish before the wait deadline")

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Token        string
	BaseURL      string
	ActorID      string
	HTTPClient   *http.Client
	Retry        *retry.Config
	InitialDelay time.Duration
	PollInterval time.Duration
	WaitTimeout  time.Duration
	Logger       logger.Logger
}

// Client talks to the Apify API
type Client struct {
	httpClient   *http.Client
	token        string
	baseURL      string
	actorID      string
	retry        *retry.Config
	initialDelay time.Duration
	pollInterval time.Duration
	waitTimeout  time.Duration
	logger       logger.Logger
}

// NewClient creates a new Apify API client
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:   opts.HTTPClient,
		token:        opts.Token,
		baseURL:      opts.BaseURL,
		actorID:      opts.ActorID,
		retry:        opts.Retry,
		initialDelay: opts.InitialDelay,
		pollInterval: opts.PollInterval,
		waitTimeout:  opts.WaitTimeout,
		logger:       opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.baseURL == "" {
		c.baseURL = BaseURL
	}
	if c.actorID == "" {
		c.actorID = InstagramActorID
	}
	if c.retry == nil {
		c.retry = &retry.Config{MaxAttempts: 1}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 3 * time.Second
	}
	if c.waitTimeout <= 0 {
		c.waitTimeout = 5 * time.Minute
	}
	if c.logger == nil {
		c.logger = logger.GetLogger()
	}
	c.logger = c.logger.WithField("component", "apify")
	return c
}

// Result is the outcome of a complete scrape.
type Result struct {
	Run   *Run
	Items []models.RawRecord
	// Raw is the dataset body exactly as returned.
	Raw json.RawMessage
	// Partial is set when the run had not finished by the wait deadline.
	Partial bool
}

// Scrape starts a run with job as input, waits for it and fetches the
// items of its default dataset.
func (c *Client) Scrape(ctx context.Context, job models.ScrapeJobSpec) (*Result, error) {
	run, err := c.StartRun(ctx, job)
	if err != nil {
		return nil, err
	}

	if err := retry.Wait(ctx, c.initialDelay); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRemote, err, "cancelled while waiting for actor run")
	}

	final, err := c.WaitForRun(ctx, run.ID)
	partial := false
	switch {
	case errors.Is(err, ErrWaitTimeout):
		partial = true
		c.logger.WarnWithFields("actor run still in progress at deadline, reading partial dataset", map[string]interface{}{
			"run_id":       final.ID,
			"status":       final.Status,
			"wait_timeout": c.waitTimeout.String(),
		})
	case err != nil:
		return nil, err
	}

	items, raw, err := c.DatasetItems(ctx, final.DefaultDatasetID)
	if err != nil {
		return nil, err
	}

	return &Result{Run: final, Items: items, Raw: raw, Partial: partial}, nil
}

// StartRun submits a new actor run.
func (c *Client) StartRun(ctx context.Context, job models.ScrapeJobSpec) (*Run, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, err, "failed to encode actor input")
	}

	// A lost response may still have started a paid run, so only an
	// explicit throttle or server status is retried.
	env, err := retry.DoWithResult(ctx, c.startRetry(), func(ctx context.Context) (runEnvelope, error) {
		var env runEnvelope
		err := c.doJSON(ctx, http.MethodPost, RunsURL(c.baseURL, c.actorID), body, http.StatusCreated, &env)
		return env, err
	})
	if err != nil {
		return nil, err
	}
	if env.Data.ID == "" {
		return nil, errs.New(errs.ErrorTypeParsing, "actor run response has no id")
	}

	c.logger.InfoWithFields("Actor run started", map[string]interface{}{
		"actor":      c.actorID,
		"run_id":     env.Data.ID,
		"dataset_id": env.Data.DefaultDatasetID,
	})
	return &env.Data, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	env, err := retry.DoWithResult(ctx, c.retry, func(ctx context.Context) (runEnvelope, error) {
		var env runEnvelope
		err := c.doJSON(ctx, http.MethodGet, RunURL(c.baseURL, runID), nil, http.StatusOK, &env)
		return env, err
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// WaitForRun polls the run until it reaches a terminal status or the wait
// deadline passes. A run that ends in anything but SUCCEEDED is a remote
// error. On deadline it returns the last observed run with ErrWaitTimeout.
func (c *Client) WaitForRun(ctx context.Context, runID string) (*Run, error) {
	start := time.Now()
	deadline := time.NewTimer(c.waitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	lastStatus := ""
	for {
		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if run.Status != lastStatus {
			logger.LogRunStatus(c.logger, runID, run.Status, time.Since(start))
			lastStatus = run.Status
		}

		if run.IsTerminal() {
			if !run.Succeeded() {
				return run, &errs.Error{
					Type:    errs.ErrorTypeRemote,
					Message: fmt.Sprintf("actor run %s finished with status %s", runID, run.Status),
				}
			}
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, errs.Wrap(errs.ErrorTypeRemote, ctx.Err(), "cancelled while waiting for actor run")
		case <-deadline.C:
			return run, ErrWaitTimeout
		case <-ticker.C:
		}
	}
}

// DatasetItems reads every item of a dataset. It returns the decoded
// records and the raw body.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]models.RawRecord, json.RawMessage, error) {
	if datasetID == "" {
		return nil, nil, errs.New(errs.ErrorTypeRemote, "actor run has no default dataset")
	}

	raw, err := retry.DoWithResult(ctx, c.retry, func(ctx context.Context) (json.RawMessage, error) {
		var raw json.RawMessage
		err := c.doJSON(ctx, http.MethodGet, DatasetItemsURL(c.baseURL, datasetID), nil, http.StatusOK, &raw)
		return raw, err
	})
	if err != nil {
		return nil, nil, err
	}

	var items []models.RawRecord
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, errs.Wrap(errs.ErrorTypeParsing, err, "failed to decode dataset items")
	}

	c.logger.InfoWithFields("Dataset fetched", map[string]interface{}{
		"dataset_id": datasetID,
		"items":      len(items),
	})
	return items, raw, nil
}

// doJSON performs one request, checks the status against want and decodes
// the body into target.
func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, want int, target interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errs.Wrap(errs.ErrorTypeRemote, ctx.Err(), "request cancelled")
		}
		return errs.Wrap(errs.ErrorTypeNetwork, err, fmt.Sprintf("%s %s", method, req.URL.Path))
	}
	defer resp.Body.Close()
	logger.LogRequest(c.logger, method, req.URL.Path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}

	if resp.StatusCode != want {
		return statusError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, target); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"path":         req.URL.Path,
			"body_preview": preview,
		})
		return errs.Wrap(errs.ErrorTypeParsing, err, "failed to parse JSON")
	}
	return nil
}

// startRetry is c.retry restricted to responses that prove the run was
// not accepted.
func (c *Client) startRetry() *retry.Config {
	cfg := *c.retry
	cfg.RetryIf = func(err error) bool {
		var e *errs.Error
		return errors.As(err, &e) && errs.IsRetryableStatusCode(e.Code)
	}
	return &cfg
}

func statusError(code int, body []byte) *errs.Error {
	msg := http.StatusText(code)
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		msg = env.Error.Message
		if env.Error.Type != "" {
			msg = env.Error.Type + ": " + msg
		}
	}
	return errs.FromStatus(code, msg)
}
