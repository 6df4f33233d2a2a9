// Package apify is a small client for the Apify REST API, limited to what
// the profile scraper needs: start an actor run, wait for it to reach a
// terminal status and read the items of its default dataset.
//
// Waiting is done by polling the run every PollInterval until it finishes
// or WaitTimeout elapses. When the deadline passes first, Scrape still
// reads the dataset and marks the result as Partial.
//
//	c := apify.NewClient(apify.Options{Token: token, Logger: log})
//	res, err := c.Scrape(ctx, apify.JobSpecFor("naturelovers", cfg.Apify))
//	if err != nil {
//		return err
//	}
//	for _, item := range res.Items {
//		...
//	}
package apify
