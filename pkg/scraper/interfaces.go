package scraper

import (
	"context"
	"encoding/json"

	"igprofile/internal/downloader"
	"igprofile/pkg/apify"
	"igprofile/pkg/models"
)

// RemoteClient runs the scraping actor and reads its datasets.
type RemoteClient interface {
	Scrape(ctx context.Context, job models.ScrapeJobSpec) (*apify.Result, error)
	DatasetItems(ctx context.Context, datasetID string) ([]models.RawRecord, json.RawMessage, error)
}

// MediaDownloader fetches post media into an output tree.
type MediaDownloader interface {
	DownloadBatch(ctx context.Context, posts []*models.NormalizedPost, contentType string) []downloader.Result
}
