package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
	"igprofile/pkg/models"
)

func sampleSummary() *models.ProfileSummary {
	return &models.ProfileSummary{
		Username:       "naturelovers",
		FullName:       "Nature Lovers",
		Biography:      "Trees, mostly",
		FollowersCount: 1234567,
		FollowingCount: 12,
		PostsCount:     3456,
		IsVerified:     true,
		Posts: []*models.NormalizedPost{
			{
				PostID:         "1",
				Shortcode:      "A",
				Caption:        "sunrise, over \"hills\"",
				LikesCount:     100,
				CommentsCount:  2,
				MediaType:      models.MediaTypeImage,
				Hashtags:       []string{"nature", "sun"},
				Mentions:       []string{},
				EngagementRate: 102,
				TopComments: []models.Comment{
					{Text: "wow", Owner: "alice", Timestamp: "t1", LikesCount: 3},
					{Text: "nice", Owner: "bob", Timestamp: "t2"},
				},
				DownloadedFile: "/out/post/A.jpg",
			},
			{
				PostID:         "2",
				Shortcode:      "B",
				MediaType:      models.MediaTypeCarousel,
				Hashtags:       []string{},
				Mentions:       []string{},
				TopComments:    []models.Comment{},
				CarouselMedia:  []string{"u1", "u2"},
				DownloadedFile: "/out/post/B",
			},
		},
		Reels: []*models.NormalizedPost{
			{
				PostID:         "3",
				Shortcode:      "C",
				MediaType:      models.MediaTypeVideo,
				LikesCount:     50,
				CommentsCount:  1,
				EngagementRate: 51,
				Hashtags:       []string{},
				Mentions:       []string{"friend"},
				VideoURL:       "https://cdn/c.mp4",
				VideoViewCount: 900,
				TopComments:    []models.Comment{{Text: "cool", Owner: "carol", Timestamp: "t3"}},
			},
		},
	}
}

func readCSV(t *testing.T, path string) []map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	header := records[0]
	var out []map[string]string
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		out = append(out, row)
	}
	return out
}

func TestExportWritesAllFiles(t *testing.T) {
	dir := t.TempDir()
	tl := logger.NewTestLogger()
	e := New(dir, config.DefaultConfig().Export, tl)

	rep := e.Export(sampleSummary(), "naturelovers")
	require.NoError(t, rep.Err)
	assert.Equal(t, []string{
		filepath.Join(dir, "naturelovers_profile_info.csv"),
		filepath.Join(dir, "naturelovers_posts.csv"),
		filepath.Join(dir, "naturelovers_comments.csv"),
		filepath.Join(dir, "naturelovers_reels.csv"),
	}, rep.Files)

	profile := readCSV(t, rep.Files[0])
	require.Len(t, profile, 1)
	assert.Equal(t, "1234567", profile[0]["followers_count"])
	assert.Equal(t, "true", profile[0]["is_verified"])
	_, hasPosts := profile[0]["posts"]
	assert.False(t, hasPosts)

	posts := readCSV(t, rep.Files[1])
	require.Len(t, posts, 2)
	assert.Equal(t, `sunrise, over "hills"`, posts[0]["caption"])
	assert.Equal(t, `["nature","sun"]`, posts[0]["hashtags"])
	assert.Equal(t, "[]", posts[0]["mentions"])
	assert.Equal(t, "102", posts[0]["engagement_rate"])
	assert.Equal(t, "/out/post/A.jpg", posts[0]["downloaded_file"])
	assert.Equal(t, `["u1","u2"]`, posts[1]["carousel_media"])
	_, hasComments := posts[0]["top_comments"]
	assert.False(t, hasComments)

	comments := readCSV(t, rep.Files[2])
	require.Len(t, comments, 2)
	assert.Equal(t, "1", comments[0]["post_id"])
	assert.Equal(t, "alice", comments[0]["owner"])
	assert.Equal(t, "3", comments[0]["likes_count"])

	reels := readCSV(t, rep.Files[3])
	require.Len(t, reels, 1)
	assert.Equal(t, "900", reels[0]["video_view_count"])
	assert.Equal(t, "", reels[0]["downloaded_file"])

	var embedded []models.Comment
	require.NoError(t, json.Unmarshal([]byte(reels[0]["top_comments"]), &embedded))
	assert.Equal(t, []models.Comment{{Text: "cool", Owner: "carol", Timestamp: "t3"}}, embedded)

	assert.Len(t, tl.GetMessagesByLevel("INFO"), 4)
}

func TestExportSkipsEmptyTables(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, config.DefaultConfig().Export, nil)

	summary := &models.ProfileSummary{Username: "empty", Posts: []*models.NormalizedPost{}, Reels: []*models.NormalizedPost{}}
	rep := e.Export(summary, "empty")

	require.NoError(t, rep.Err)
	assert.Equal(t, []string{filepath.Join(dir, "empty_profile_info.csv")}, rep.Files)
	assert.NoFileExists(t, filepath.Join(dir, "empty_posts.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "empty_reels.csv"))
}

func TestExportPostsWithoutComments(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, config.DefaultConfig().Export, nil)

	summary := sampleSummary()
	for _, p := range summary.Posts {
		p.TopComments = []models.Comment{}
	}
	rep := e.Export(summary, "quiet")

	require.NoError(t, rep.Err)
	assert.NoFileExists(t, filepath.Join(dir, "quiet_comments.csv"))
	assert.FileExists(t, filepath.Join(dir, "quiet_posts.csv"))
}

func TestExportOptionalCommentStrategies(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig().Export
	cfg.CommentsFile = false
	cfg.EmbedReelComment = false

	rep := New(dir, cfg, nil).Export(sampleSummary(), "lean")
	require.NoError(t, rep.Err)
	assert.Len(t, rep.Files, 3)
	assert.NoFileExists(t, filepath.Join(dir, "lean_comments.csv"))

	reels := readCSV(t, filepath.Join(dir, "lean_reels.csv"))
	_, embedded := reels[0]["top_comments"]
	assert.False(t, embedded)
}

func TestExportStopsOnWriteError(t *testing.T) {
	dir := t.TempDir()
	// A directory where the posts file should go makes the rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blocked_posts.csv"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocked_posts.csv", "x"), []byte("x"), 0644))

	tl := logger.NewTestLogger()
	rep := New(dir, config.DefaultConfig().Export, tl).Export(sampleSummary(), "blocked")

	require.Error(t, rep.Err)
	assert.True(t, errs.Is(rep.Err, errs.ErrorTypeExport))
	assert.Equal(t, []string{filepath.Join(dir, "blocked_profile_info.csv")}, rep.Files)
	assert.NoFileExists(t, filepath.Join(dir, "blocked_reels.csv"))
	assert.True(t, tl.HasError())
}

func TestExportNilSummary(t *testing.T) {
	rep := New(t.TempDir(), config.DefaultConfig().Export, nil).Export(nil, "x")
	assert.NoError(t, rep.Err)
	assert.Empty(t, rep.Files)
}
