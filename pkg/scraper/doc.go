// Package scraper drives one profile scrape from input to CSV files.
//
// A run goes through these steps, each logged with the invocation ID:
//
//  1. Extract the username from a name, @handle or profile URL.
//  2. Check the API token. Nothing touches the network without one.
//  3. Start an actor run and read its dataset, or re-read the dataset of
//     the last recorded run when ReuseDataset is set.
//  4. Normalize the first records into posts and reels.
//  5. Download media under <output>/post and <output>/reel.
//  6. Write the CSV files and, optionally, the JSON snapshot.
//  7. Record the run for later reuse.
//
// Remote failures end the run with a remote error and no output. Download
// and export failures are logged and do not fail the run.
//
// Usage:
//
//	s, err := scraper.New(cfg, scraper.Deps{})
//	if err != nil {
//		return err
//	}
//	summary, err := s.Run(ctx, "https://www.instagram.com/naturelovers/")
package scraper
