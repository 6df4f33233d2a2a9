package downloader

import (
	"context"
	"time"

	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
	"igprofile/pkg/models"
	"igprofile/pkg/ratelimit"
	"igprofile/pkg/storage"
)

// DefaultCarouselWorkers caps concurrent sub-item fetches of one carousel.
const DefaultCarouselWorkers = config.MaxCarouselWorkers

// Content type directories under the output root.
const (
	ContentPost = "post"
	ContentReel = "reel"
)

// Result describes the download attempt for one post.
type Result struct {
	Shortcode string
	MediaType string
	Path      string
	Success   bool
	Error     error
	Duration  time.Duration
	// Carousel sub-item counts; zero for single-file posts.
	Items  int
	Failed int
}

// Downloader fetches post media into the storage layout.
type Downloader struct {
	store   *storage.Manager
	fetcher Fetcher
	workers int
	log     logger.Logger

	// OnResult, when set, is called after each post finishes.
	OnResult func(Result)
}

// New wires a Downloader with an HTTP fetcher built from cfg.
func New(store *storage.Manager, cfg config.DownloadConfig, log logger.Logger) *Downloader {
	f := NewHTTPFetcher(store, ratelimit.PerMinute(cfg.RequestsPerMinute), cfg.Timeout, cfg.UserAgent)
	return NewWithFetcher(store, f, cfg.CarouselWorkers, log)
}

// NewWithFetcher creates a Downloader around a custom Fetcher. workers is
// clamped to 1..DefaultCarouselWorkers; zero or less selects the cap.
func NewWithFetcher(store *storage.Manager, f Fetcher, workers int, log logger.Logger) *Downloader {
	if workers <= 0 || workers > DefaultCarouselWorkers {
		workers = DefaultCarouselWorkers
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Downloader{
		store:   store,
		fetcher: f,
		workers: workers,
		log:     log.WithField("component", "downloader"),
	}
}

// DownloadBatch fetches media for each post in order and records the
// outcome on the post. Individual failures are logged and reported in the
// returned slice; they never abort the batch. Only a cancelled ctx stops
// early, leaving the remaining posts untouched.
func (d *Downloader) DownloadBatch(ctx context.Context, posts []*models.NormalizedPost, contentType string) []Result {
	results := make([]Result, 0, len(posts))
	for _, p := range posts {
		if ctx.Err() != nil {
			d.log.WarnWithFields("Download batch cancelled", map[string]interface{}{
				"content_type": contentType,
				"remaining":    len(posts) - len(results),
			})
			break
		}

		start := time.Now()
		var res Result
		switch {
		case p.IsVideo():
			res = d.single(ctx, p, d.store.MediaPath(contentType, p.Shortcode, ".mp4"), p.VideoURL)
		case p.IsCarousel():
			res = d.carousel(ctx, p, contentType)
		default:
			res = d.single(ctx, p, d.store.MediaPath(contentType, p.Shortcode, ".jpg"), p.MediaURL)
		}
		res.Duration = time.Since(start)

		if res.Success {
			p.DownloadedFile = res.Path
		}
		results = append(results, res)
		if d.OnResult != nil {
			d.OnResult(res)
		}
	}
	return results
}

func (d *Downloader) single(ctx context.Context, p *models.NormalizedPost, dest, url string) Result {
	res := Result{Shortcode: p.Shortcode, MediaType: p.MediaType, Path: dest}

	ok, err := d.fetch(ctx, url, dest)
	logger.LogFetch(d.log, p.Shortcode, p.MediaType, dest, err)
	res.Success = ok
	res.Error = err
	return res
}

func (d *Downloader) carousel(ctx context.Context, p *models.NormalizedPost, contentType string) Result {
	dir := d.store.CarouselDir(contentType, p.Shortcode)
	res := Result{Shortcode: p.Shortcode, MediaType: p.MediaType, Path: dir, Items: len(p.CarouselMedia)}

	if err := d.store.EnsureDir(dir); err != nil {
		res.Error = errs.Wrap(errs.ErrorTypeDownload, err, "carousel directory")
		logger.LogFetch(d.log, p.Shortcode, p.MediaType, dir, res.Error)
		return res
	}

	tg := NewTaskGroup(d.workers)
	for i, url := range p.CarouselMedia {
		i, url := i, url
		dest := storage.CarouselItemPath(dir, i)
		tg.Go(func() error {
			_, err := d.fetch(ctx, url, dest)
			logger.LogFetch(d.log.WithField("index", i+1), p.Shortcode, p.MediaType, dest, err)
			return err
		})
	}

	var lastErr error
	for _, err := range tg.Wait() {
		if err != nil {
			res.Failed++
			lastErr = err
		}
	}

	// An empty carousel still counts: its directory exists.
	res.Success = res.Items == 0 || res.Failed < res.Items
	if !res.Success {
		res.Error = lastErr
	}
	return res
}

func (d *Downloader) fetch(ctx context.Context, url, dest string) (bool, error) {
	if _, err := d.fetcher.Fetch(ctx, url, dest); err != nil {
		return false, err
	}
	return true, nil
}
