// Package export flattens a scraped profile into CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"

	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
	"igprofile/pkg/models"
	"igprofile/pkg/storage"
)

// File name suffixes appended to the username.
const (
	ProfileSuffix  = "_profile_info.csv"
	PostsSuffix    = "_posts.csv"
	CommentsSuffix = "_comments.csv"
	ReelsSuffix    = "_reels.csv"
)

var (
	profileHeader = []string{
		"username", "full_name", "biography", "followers_count", "following_count",
		"posts_count", "is_private", "is_verified", "profile_pic_url", "external_url",
	}
	postHeader = []string{
		"post_id", "shortcode", "caption", "likes_count", "comments_count", "timestamp",
		"url", "media_type", "media_url", "location", "hashtags", "mentions",
		"engagement_rate", "carousel_media", "downloaded_file",
	}
	commentHeader = []string{"text", "owner", "timestamp", "likes_count", "post_id"}
	reelHeader    = []string{
		"post_id", "shortcode", "caption", "likes_count", "comments_count", "timestamp",
		"url", "media_type", "media_url", "location", "hashtags", "mentions",
		"engagement_rate", "video_url", "video_view_count", "downloaded_file",
	}
)

// Report lists the files written and the error that stopped the export,
// if any. Files written before a failure stay on disk.
type Report struct {
	Files []string
	Err   error
}

// Exporter writes CSV files into a directory.
type Exporter struct {
	dir string
	cfg config.ExportConfig
	log logger.Logger
}

// New creates an Exporter writing into dir.
func New(dir string, cfg config.ExportConfig, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Exporter{dir: dir, cfg: cfg, log: log.WithField("component", "exporter")}
}

type step struct {
	suffix string
	skip   bool
	rows   func() [][]string
}

// Export writes the profile, posts, comments and reels tables. The posts,
// comments and reels files are skipped when they would be empty. The first
// write error is logged and ends the export.
func (e *Exporter) Export(summary *models.ProfileSummary, username string) Report {
	var rep Report
	if summary == nil {
		return rep
	}

	comments := commentRows(summary.Posts)
	steps := []step{
		{suffix: ProfileSuffix, rows: func() [][]string { return [][]string{profileHeader, profileRow(summary)} }},
		{suffix: PostsSuffix, skip: len(summary.Posts) == 0, rows: func() [][]string { return postRows(summary.Posts) }},
		{suffix: CommentsSuffix, skip: !e.cfg.CommentsFile || len(comments) == 0, rows: func() [][]string {
			return append([][]string{commentHeader}, comments...)
		}},
		{suffix: ReelsSuffix, skip: len(summary.Reels) == 0, rows: func() [][]string {
			return reelRows(summary.Reels, e.cfg.EmbedReelComment)
		}},
	}

	for _, s := range steps {
		if s.skip {
			continue
		}
		path := filepath.Join(e.dir, username+s.suffix)
		if err := writeCSV(path, s.rows()); err != nil {
			rep.Err = errs.Wrap(errs.ErrorTypeExport, err, "failed to write "+filepath.Base(path))
			e.log.WithError(rep.Err).ErrorWithFields("Error saving data to CSV", map[string]interface{}{
				"path": path,
			})
			return rep
		}
		rep.Files = append(rep.Files, path)
		e.log.InfoWithFields("Saved CSV", map[string]interface{}{
			"path": path,
		})
	}
	return rep
}

func writeCSV(path string, rows [][]string) error {
	return storage.AtomicWrite(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

func profileRow(s *models.ProfileSummary) []string {
	return []string{
		s.Username,
		s.FullName,
		s.Biography,
		itoa(s.FollowersCount),
		itoa(s.FollowingCount),
		itoa(s.PostsCount),
		strconv.FormatBool(s.IsPrivate),
		strconv.FormatBool(s.IsVerified),
		s.ProfilePicURL,
		s.ExternalURL,
	}
}

func baseColumns(p *models.NormalizedPost) []string {
	return []string{
		p.PostID,
		p.Shortcode,
		p.Caption,
		itoa(p.LikesCount),
		itoa(p.CommentsCount),
		p.Timestamp,
		p.URL,
		p.MediaType,
		p.MediaURL,
		p.Location,
		jsonList(p.Hashtags),
		jsonList(p.Mentions),
		itoa(p.EngagementRate),
	}
}

func postRows(posts []*models.NormalizedPost) [][]string {
	rows := [][]string{postHeader}
	for _, p := range posts {
		row := append(baseColumns(p), jsonList(p.CarouselMedia), p.DownloadedFile)
		rows = append(rows, row)
	}
	return rows
}

func reelRows(reels []*models.NormalizedPost, embedComments bool) [][]string {
	header := reelHeader
	if embedComments {
		header = append(append([]string{}, reelHeader...), "top_comments")
	}
	rows := [][]string{header}
	for _, p := range reels {
		row := append(baseColumns(p), p.VideoURL, itoa(p.VideoViewCount), p.DownloadedFile)
		if embedComments {
			row = append(row, jsonValue(p.TopComments))
		}
		rows = append(rows, row)
	}
	return rows
}

func commentRows(posts []*models.NormalizedPost) [][]string {
	var rows [][]string
	for _, p := range posts {
		for _, c := range p.TopComments {
			rows = append(rows, []string{c.Text, c.Owner, c.Timestamp, itoa(c.LikesCount), p.PostID})
		}
	}
	return rows
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	return jsonValue(v)
}

func jsonValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
