package scraper_test

import (
	"context"
	"fmt"

	"igprofile/pkg/config"
	"igprofile/pkg/scraper"
)

func ExampleScraper_Run() {
	cfg, err := config.Load("", nil)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	s, err := scraper.New(cfg, scraper.Deps{})
	if err != nil {
		fmt.Printf("Failed to create scraper: %v\n", err)
		return
	}

	summary, err := s.Run(context.Background(), "https://www.instagram.com/naturelovers/")
	if err != nil {
		fmt.Printf("Scrape failed: %v\n", err)
		return
	}
	fmt.Printf("%d posts, %d reels\n", len(summary.Posts), len(summary.Reels))
}
