package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
	"igprofile/pkg/models"
	"igprofile/pkg/storage"
)

// mediaServer serves "/ok/<name>" with the name as body and 404 for
// anything else. It tracks how many requests are in flight at once.
type mediaServer struct {
	*httptest.Server
	delay    time.Duration
	inFlight int32
	maxSeen  int32
	hits     int32
}

func newMediaServer(t *testing.T, delay time.Duration) *mediaServer {
	ms := &mediaServer{delay: delay}
	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ms.hits, 1)
		cur := atomic.AddInt32(&ms.inFlight, 1)
		defer atomic.AddInt32(&ms.inFlight, -1)
		for {
			seen := atomic.LoadInt32(&ms.maxSeen)
			if cur <= seen || atomic.CompareAndSwapInt32(&ms.maxSeen, seen, cur) {
				break
			}
		}
		time.Sleep(ms.delay)

		name, ok := strings.CutPrefix(r.URL.Path, "/ok/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, name)
	}))
	t.Cleanup(ms.Close)
	return ms
}

func (ms *mediaServer) ok(name string) string  { return ms.URL + "/ok/" + name }
func (ms *mediaServer) bad(name string) string { return ms.URL + "/missing/" + name }

func newTestDownloader(t *testing.T) (*Downloader, *storage.Manager, *logger.TestLogger) {
	t.Helper()
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	tl := logger.NewTestLogger()
	cfg := config.DefaultConfig().Download
	cfg.Timeout = 5 * time.Second
	return New(store, cfg, tl), store, tl
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDownloadBatchLayout(t *testing.T) {
	ms := newMediaServer(t, 0)
	d, store, tl := newTestDownloader(t)

	image := &models.NormalizedPost{Shortcode: "A", MediaType: models.MediaTypeImage, MediaURL: ms.ok("a-image")}
	carousel := &models.NormalizedPost{
		Shortcode:     "B",
		MediaType:     models.MediaTypeCarousel,
		MediaURL:      ms.ok("cover"),
		CarouselMedia: []string{ms.ok("b1"), ms.ok("b2"), ms.ok("b3")},
	}
	video := &models.NormalizedPost{Shortcode: "C", MediaType: models.MediaTypeVideo, MediaURL: ms.ok("thumb"), VideoURL: ms.ok("c-video")}

	posts := d.DownloadBatch(context.Background(), []*models.NormalizedPost{image, carousel}, ContentPost)
	reels := d.DownloadBatch(context.Background(), []*models.NormalizedPost{video}, ContentReel)

	require.Len(t, posts, 2)
	require.Len(t, reels, 1)
	for _, r := range append(posts, reels...) {
		assert.True(t, r.Success, r.Shortcode)
		assert.NoError(t, r.Error)
	}

	root := store.Root()
	assert.Equal(t, filepath.Join(root, "post", "A.jpg"), image.DownloadedFile)
	assert.Equal(t, "a-image", readFile(t, image.DownloadedFile))

	assert.Equal(t, filepath.Join(root, "post", "B"), carousel.DownloadedFile)
	for i, want := range []string{"b1", "b2", "b3"} {
		assert.Equal(t, want, readFile(t, filepath.Join(carousel.DownloadedFile, fmt.Sprintf("%d.jpg", i+1))))
	}

	assert.Equal(t, filepath.Join(root, "reel", "C.mp4"), video.DownloadedFile)
	assert.Equal(t, "c-video", readFile(t, video.DownloadedFile))

	files, _ := store.Stats()
	assert.Equal(t, 5, files)
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 0)
}

func TestCarouselConcurrencyIsCapped(t *testing.T) {
	ms := newMediaServer(t, 40*time.Millisecond)
	d, _, _ := newTestDownloader(t)

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = ms.ok(fmt.Sprintf("item%d", i))
	}
	post := &models.NormalizedPost{Shortcode: "MANY", MediaType: models.MediaTypeCarousel, CarouselMedia: urls}

	results := d.DownloadBatch(context.Background(), []*models.NormalizedPost{post}, ContentPost)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 12, results[0].Items)
	assert.EqualValues(t, 12, atomic.LoadInt32(&ms.hits))
	assert.LessOrEqual(t, atomic.LoadInt32(&ms.maxSeen), int32(DefaultCarouselWorkers))
	assert.Greater(t, atomic.LoadInt32(&ms.maxSeen), int32(1))
}

func TestCarouselWorkersAboveCapAreClamped(t *testing.T) {
	ms := newMediaServer(t, 40*time.Millisecond)
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	cfg := config.DefaultConfig().Download
	cfg.CarouselWorkers = 10
	d := New(store, cfg, logger.NewTestLogger())
	assert.Equal(t, DefaultCarouselWorkers, d.workers)

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = ms.ok(fmt.Sprintf("wide%d", i))
	}
	post := &models.NormalizedPost{Shortcode: "WIDE", MediaType: models.MediaTypeCarousel, CarouselMedia: urls}

	results := d.DownloadBatch(context.Background(), []*models.NormalizedPost{post}, ContentPost)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.LessOrEqual(t, atomic.LoadInt32(&ms.maxSeen), int32(DefaultCarouselWorkers))
}

func TestCarouselPartialFailure(t *testing.T) {
	ms := newMediaServer(t, 0)
	d, _, tl := newTestDownloader(t)

	post := &models.NormalizedPost{
		Shortcode:     "MIX",
		MediaType:     models.MediaTypeCarousel,
		CarouselMedia: []string{ms.ok("one"), ms.bad("two"), ms.ok("three")},
	}
	results := d.DownloadBatch(context.Background(), []*models.NormalizedPost{post}, ContentPost)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 1, results[0].Failed)
	assert.NotEmpty(t, post.DownloadedFile)

	assert.FileExists(t, filepath.Join(post.DownloadedFile, "1.jpg"))
	assert.NoFileExists(t, filepath.Join(post.DownloadedFile, "2.jpg"))
	assert.FileExists(t, filepath.Join(post.DownloadedFile, "3.jpg"))
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 1)
}

func TestCarouselAllFailed(t *testing.T) {
	ms := newMediaServer(t, 0)
	d, _, _ := newTestDownloader(t)

	post := &models.NormalizedPost{
		Shortcode:     "DEAD",
		MediaType:     models.MediaTypeCarousel,
		CarouselMedia: []string{ms.bad("x"), ms.bad("y")},
	}
	results := d.DownloadBatch(context.Background(), []*models.NormalizedPost{post}, ContentPost)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, 2, results[0].Failed)
	assert.True(t, errs.Is(results[0].Error, errs.ErrorTypeDownload))
	assert.Empty(t, post.DownloadedFile)
}

func TestEmptyCarouselRecordsDirectory(t *testing.T) {
	d, _, _ := newTestDownloader(t)

	post := &models.NormalizedPost{Shortcode: "EMPTY", MediaType: models.MediaTypeCarousel, CarouselMedia: []string{}}
	results := d.DownloadBatch(context.Background(), []*models.NormalizedPost{post}, ContentPost)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.DirExists(t, post.DownloadedFile)
}

func TestFailuresDoNotStopBatch(t *testing.T) {
	ms := newMediaServer(t, 0)
	d, _, tl := newTestDownloader(t)

	noURL := &models.NormalizedPost{Shortcode: "NOURL", MediaType: models.MediaTypeImage}
	missing := &models.NormalizedPost{Shortcode: "GONE", MediaType: models.MediaTypeVideo, VideoURL: ms.bad("gone")}
	fine := &models.NormalizedPost{Shortcode: "FINE", MediaType: models.MediaTypeImage, MediaURL: ms.ok("fine")}

	var seen []string
	d.OnResult = func(r Result) { seen = append(seen, r.Shortcode) }

	results := d.DownloadBatch(context.Background(), []*models.NormalizedPost{noURL, missing, fine}, ContentPost)

	require.Len(t, results, 3)
	assert.False(t, results[0].Success)
	assert.Error(t, results[0].Error)
	assert.False(t, results[1].Success)
	assert.True(t, errs.Is(results[1].Error, errs.ErrorTypeNotFound))
	assert.True(t, results[2].Success)

	assert.Empty(t, noURL.DownloadedFile)
	assert.Empty(t, missing.DownloadedFile)
	assert.NotEmpty(t, fine.DownloadedFile)
	assert.Equal(t, []string{"NOURL", "GONE", "FINE"}, seen)
	assert.True(t, tl.HasMessage("Download failed"))
}

func TestDownloadBatchCancelled(t *testing.T) {
	ms := newMediaServer(t, 0)
	d, _, _ := newTestDownloader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	posts := []*models.NormalizedPost{{Shortcode: "A", MediaType: models.MediaTypeImage, MediaURL: ms.ok("a")}}
	results := d.DownloadBatch(ctx, posts, ContentPost)

	assert.Empty(t, results)
	assert.Empty(t, posts[0].DownloadedFile)
	assert.Zero(t, atomic.LoadInt32(&ms.hits))
}

type recordingFetcher struct {
	mu   sync.Mutex
	urls []string
}

func (f *recordingFetcher) Fetch(_ context.Context, url, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return 0, nil
}

func TestNewWithFetcher(t *testing.T) {
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	rf := &recordingFetcher{}
	d := NewWithFetcher(store, rf, 0, nil)

	assert.Equal(t, DefaultCarouselWorkers, d.workers)
	assert.Equal(t, 2, NewWithFetcher(store, rf, 2, nil).workers)

	post := &models.NormalizedPost{Shortcode: "V", MediaType: models.MediaTypeVideo, MediaURL: "thumb", VideoURL: "video"}
	d.DownloadBatch(context.Background(), []*models.NormalizedPost{post}, ContentReel)
	assert.Equal(t, []string{"video"}, rf.urls)
}
