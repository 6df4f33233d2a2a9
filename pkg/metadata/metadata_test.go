package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igprofile/pkg/models"
)

func TestWriteRawRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	items := json.RawMessage(`[{"id":"1","shortCode":"A","type":"Image","likesCount":4}]`)
	path, err := w.WriteRaw(&Snapshot{
		InvocationID: "inv",
		Username:     "naturelovers",
		RunID:        "run1",
		DatasetID:    "ds1",
		Partial:      true,
		Items:        items,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "naturelovers_raw.json"), path)

	snap, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, "ds1", snap.DatasetID)
	assert.True(t, snap.Partial)
	assert.False(t, snap.CapturedAt.IsZero())

	records, err := snap.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", *records[0].ShortCode)
	assert.EqualValues(t, 4, *records[0].LikesCount)
}

func TestWriteRawEmptyItems(t *testing.T) {
	w := NewWriter(t.TempDir())
	path, err := w.WriteRaw(&Snapshot{Username: "empty"})
	require.NoError(t, err)

	snap, err := LoadRaw(path)
	require.NoError(t, err)
	records, err := snap.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	summary := &models.ProfileSummary{
		Username: "naturelovers",
		Posts:    []*models.NormalizedPost{{Shortcode: "A", DownloadedFile: "/x/post/A.jpg"}},
		Reels:    []*models.NormalizedPost{},
	}
	path, err := w.WriteSummary(summary)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got models.ProfileSummary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "/x/post/A.jpg", got.Posts[0].DownloadedFile)
}

func TestLoadRawMissing(t *testing.T) {
	_, err := LoadRaw(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestTruncateCaption(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"a long caption here", 10, "a long ..."},
		{"ünïcödé text", 8, "ünïcö..."},
		{"anything", 2, "anything"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateCaption(tt.in, tt.max), tt.in)
	}
}
