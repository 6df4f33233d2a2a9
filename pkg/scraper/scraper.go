package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"igprofile/internal/downloader"
	"igprofile/pkg/apify"
	"igprofile/pkg/checkpoint"
	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/export"
	"igprofile/pkg/logger"
	"igprofile/pkg/metadata"
	"igprofile/pkg/models"
	"igprofile/pkg/normalize"
	"igprofile/pkg/retry"
	"igprofile/pkg/storage"
	"igprofile/pkg/ui"
)

// captionPreview bounds the caption shown in per-post log lines.
const captionPreview = 60

// ErrNoData is returned when the actor produced no records for a profile.
var ErrNoData = errs.New(errs.ErrorTypeNotFound, "no data found for this profile")

// Deps lets callers replace collaborators. Nil fields are built from the
// configuration.
type Deps struct {
	Client RemoteClient
	// NewDownloader builds the media downloader for an output root.
	NewDownloader func(store *storage.Manager) MediaDownloader
	Runs          *checkpoint.Store
	Notifier      *ui.Notifier
	Logger        logger.Logger
	// Progress receives the download progress line; nil disables it.
	Progress io.Writer
}

// Scraper orchestrates one profile scrape per call.
type Scraper struct {
	config        *config.Config
	client        RemoteClient
	newDownloader func(store *storage.Manager) MediaDownloader
	runs          *checkpoint.Store
	notifier      *ui.Notifier
	logger        logger.Logger
	progress      io.Writer

	// ReuseDataset re-reads the dataset of the last recorded run for the
	// profile instead of starting a new actor run.
	ReuseDataset bool
}

// Report describes everything a run produced.
type Report struct {
	InvocationID string
	Username     string
	OutputDir    string
	Summary      *models.ProfileSummary
	Run          *apify.Run
	DatasetID    string
	Partial      bool
	Reused       bool
	Downloads    []downloader.Result
	Export       export.Report
	Snapshots    []string
}

// New wires a Scraper from cfg, filling any nil dependency.
func New(cfg *config.Config, deps Deps) (*Scraper, error) {
	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Scraper{
		config:        cfg,
		client:        deps.Client,
		newDownloader: deps.NewDownloader,
		runs:          deps.Runs,
		notifier:      deps.Notifier,
		logger:        log.WithField("component", "scraper"),
		progress:      deps.Progress,
	}

	if s.client == nil {
		s.client = apify.NewClient(apify.Options{
			Token:        cfg.Apify.Token,
			BaseURL:      cfg.Apify.BaseURL,
			ActorID:      cfg.Apify.ActorID,
			HTTPClient:   &http.Client{Timeout: cfg.Apify.RequestTimeout},
			Retry:        retry.FromSettings(cfg.Retry, log),
			InitialDelay: cfg.Apify.InitialDelay,
			PollInterval: cfg.Apify.PollInterval,
			WaitTimeout:  cfg.Apify.WaitTimeout,
			Logger:       log,
		})
	}
	if s.newDownloader == nil {
		s.newDownloader = func(store *storage.Manager) MediaDownloader {
			return downloader.New(store, cfg.Download, log)
		}
	}
	if s.runs == nil {
		runs, err := checkpoint.NewStore(RunsPath(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("failed to open run records: %w", err)
		}
		s.runs = runs
	}
	if s.notifier == nil {
		s.notifier = ui.NewNotifier(cfg.Notifications)
	}

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"actor_id":      cfg.Apify.ActorID,
		"results_limit": cfg.Apify.ResultsLimit,
		"output":        cfg.Output.BaseDirectory,
		"download":      cfg.Download.Enabled,
	})
	return s, nil
}

// Run scrapes the profile named by input and returns its summary.
func (s *Scraper) Run(ctx context.Context, input string) (*models.ProfileSummary, error) {
	rep, err := s.Scrape(ctx, input)
	if err != nil {
		return nil, err
	}
	return rep.Summary, nil
}

// Scrape is Run with the full report.
func (s *Scraper) Scrape(ctx context.Context, input string) (*Report, error) {
	rep := &Report{InvocationID: uuid.NewString()}
	rep.Username = normalize.ExtractUsername(input)
	log := s.logger.WithFields(map[string]interface{}{
		"invocation_id": rep.InvocationID,
		"username":      rep.Username,
	})

	if rep.Username == "" {
		return nil, errs.New(errs.ErrorTypeConfig, "a username or profile URL is required")
	}
	if err := s.config.ValidateCredentials(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, err, "cannot scrape without an API token")
	}

	rep.OutputDir = s.outputDir(rep.Username)
	started := time.Now()

	records, raw, err := s.fetch(ctx, rep, log)
	if err != nil {
		if !errs.Is(err, errs.ErrorTypeRemote) {
			err = errs.Wrap(errs.ErrorTypeRemote, err, "error scraping profile")
		}
		log.WithError(err).Error("Scrape failed")
		s.notifier.Failed("Scrape failed", fmt.Sprintf("@%s: %v", rep.Username, err))
		return nil, err
	}

	rep.Summary = normalize.BuildProfile(records, rep.Username, s.config.Apify.ResultsLimit)
	if rep.Summary == nil {
		log.Warn("No data found for this profile")
		s.notifier.Failed("Scrape failed", fmt.Sprintf("@%s: %v", rep.Username, ErrNoData))
		return nil, ErrNoData
	}
	log.InfoWithFields("Records normalized", map[string]interface{}{
		"records": len(records),
		"posts":   len(rep.Summary.Posts),
		"reels":   len(rep.Summary.Reels),
	})
	logPosts(log, rep.Summary)

	store, err := storage.NewManager(rep.OutputDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, err, "output directory")
	}

	if s.config.Download.Enabled {
		rep.Downloads = s.download(ctx, store, rep.Summary)
	}

	if s.config.Export.Enabled {
		rep.Export = export.New(rep.OutputDir, s.config.Export, log).Export(rep.Summary, rep.Username)
	}

	if s.config.Output.SaveRaw {
		s.writeSnapshots(rep, raw, log)
	}

	if rep.Run != nil && !rep.Reused {
		s.recordRun(rep, started, len(records), log)
	}

	s.notifier.Complete("Scrape complete", fmt.Sprintf("@%s: %d posts, %d reels",
		rep.Username, len(rep.Summary.Posts), len(rep.Summary.Reels)))
	return rep, nil
}

func logPosts(log logger.Logger, summary *models.ProfileSummary) {
	for _, bucket := range [][]*models.NormalizedPost{summary.Posts, summary.Reels} {
		for _, p := range bucket {
			log.DebugWithFields("Post normalized", map[string]interface{}{
				"shortcode": p.Shortcode,
				"type":      p.MediaType,
				"likes":     p.LikesCount,
				"comments":  p.CommentsCount,
				"caption":   metadata.TruncateCaption(p.Caption, captionPreview),
			})
		}
	}
}

// RunsPath returns where run records for cfg are kept: output.runs_file,
// resolved against the output directory when relative.
func RunsPath(cfg *config.Config) string {
	path := cfg.Output.RunsFile
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Output.BaseDirectory, path)
	}
	return path
}

func (s *Scraper) outputDir(username string) string {
	if s.config.Output.CreateUserFolders {
		return filepath.Join(s.config.Output.BaseDirectory, username)
	}
	return s.config.Output.BaseDirectory
}

func (s *Scraper) fetch(ctx context.Context, rep *Report, log logger.Logger) ([]models.RawRecord, []byte, error) {
	if s.ReuseDataset {
		rec, err := s.runs.Get(rep.Username)
		if err != nil {
			log.WithError(err).Warn("Could not read run records, starting a new run")
		}
		if rec != nil && rec.DatasetID != "" {
			log.InfoWithFields("Reusing recorded dataset", map[string]interface{}{
				"run_id":     rec.RunID,
				"dataset_id": rec.DatasetID,
			})
			items, raw, err := s.client.DatasetItems(ctx, rec.DatasetID)
			if err != nil {
				return nil, nil, err
			}
			rep.Reused = true
			rep.DatasetID = rec.DatasetID
			rep.Run = &apify.Run{ID: rec.RunID, DefaultDatasetID: rec.DatasetID, Status: rec.Status}
			return items, raw, nil
		}
		log.Info("No recorded run for this profile, starting a new run")
	}

	log.InfoWithFields("Scraping recent posts", map[string]interface{}{
		"limit": s.config.Apify.ResultsLimit,
	})
	res, err := s.client.Scrape(ctx, apify.JobSpecFor(rep.Username, s.config.Apify))
	if err != nil {
		return nil, nil, err
	}
	rep.Run = res.Run
	rep.Partial = res.Partial
	if res.Run != nil {
		rep.DatasetID = res.Run.DefaultDatasetID
	}
	return res.Items, res.Raw, nil
}

func (s *Scraper) download(ctx context.Context, store *storage.Manager, summary *models.ProfileSummary) []downloader.Result {
	d := s.newDownloader(store)

	tracker := ui.NewStatusTracker(len(summary.Posts)+len(summary.Reels), s.progress)
	if hd, ok := d.(*downloader.Downloader); ok {
		hd.OnResult = func(r downloader.Result) { tracker.Record(r.Success) }
	}

	results := d.DownloadBatch(ctx, summary.Posts, downloader.ContentPost)
	results = append(results, d.DownloadBatch(ctx, summary.Reels, downloader.ContentReel)...)
	tracker.Finish()

	files, bytes := store.Stats()
	ok, failed := 0, 0
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	s.logger.InfoWithFields("Media downloads finished", map[string]interface{}{
		"succeeded": ok,
		"failed":    failed,
		"files":     files,
		"bytes":     bytes,
	})
	return results
}

func (s *Scraper) writeSnapshots(rep *Report, raw []byte, log logger.Logger) {
	w := metadata.NewWriter(rep.OutputDir)
	snap := &metadata.Snapshot{
		InvocationID: rep.InvocationID,
		Username:     rep.Username,
		DatasetID:    rep.DatasetID,
		Partial:      rep.Partial,
		Items:        raw,
	}
	if rep.Run != nil {
		snap.RunID = rep.Run.ID
		snap.RunStatus = rep.Run.Status
	}

	if path, err := w.WriteRaw(snap); err != nil {
		log.WithError(err).Error("Failed to write raw snapshot")
	} else {
		rep.Snapshots = append(rep.Snapshots, path)
	}
	if path, err := w.WriteSummary(rep.Summary); err != nil {
		log.WithError(err).Error("Failed to write summary snapshot")
	} else {
		rep.Snapshots = append(rep.Snapshots, path)
	}
}

func (s *Scraper) recordRun(rep *Report, started time.Time, items int, log logger.Logger) {
	rec := &models.RunRecord{
		InvocationID: rep.InvocationID,
		Username:     rep.Username,
		RunID:        rep.Run.ID,
		DatasetID:    rep.DatasetID,
		Status:       rep.Run.Status,
		ItemCount:    items,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := s.runs.Put(rec); err != nil {
		log.WithError(err).Warn("Failed to record run")
	}
}
