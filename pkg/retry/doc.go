// Package retry provides backoff and retry for calls to the scraping
// service API.
//
// Only typed network, rate limit and server errors are retried. Media
// downloads never go through this package: a failed fetch is
// recorded and the batch moves on.
//
//	cfg := retry.FromSettings(appCfg.Retry, log)
//	run, err := retry.DoWithResult(ctx, cfg, func(ctx context.Context) (*Run, error) {
//		return c.startRun(ctx, input)
//	})
package retry
