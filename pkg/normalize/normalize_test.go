package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igprofile/pkg/models"
)

func record(t *testing.T, doc string) models.RawRecord {
	t.Helper()
	var r models.RawRecord
	require.NoError(t, json.Unmarshal([]byte(doc), &r))
	return r
}

func TestNormalizeDefaults(t *testing.T) {
	post := Normalize(models.RawRecord{})

	assert.Equal(t, "", post.PostID)
	assert.Equal(t, "", post.Shortcode)
	assert.Equal(t, "", post.MediaType)
	assert.Equal(t, "", post.Location)
	assert.Zero(t, post.LikesCount)
	assert.Zero(t, post.EngagementRate)
	assert.NotNil(t, post.Hashtags)
	assert.Empty(t, post.Hashtags)
	assert.NotNil(t, post.Mentions)
	assert.NotNil(t, post.TopComments)
	assert.Empty(t, post.TopComments)
	assert.Nil(t, post.CarouselMedia)
	assert.Empty(t, post.DownloadedFile)
}

func TestNormalizeFields(t *testing.T) {
	raw := record(t, `{
		"id": "3301",
		"shortCode": "C1abc",
		"caption": "sunrise #hike",
		"likesCount": 120,
		"commentsCount": 8,
		"timestamp": "2024-05-01T06:00:00.000Z",
		"url": "https://www.instagram.com/p/C1abc/",
		"type": "Image",
		"displayUrl": "https://cdn.example/C1abc.jpg",
		"location": {"name": "Yosemite"},
		"hashtags": ["hike"],
		"mentions": ["friend"],
		"comments": [{"text": "wow", "ownerUsername": "a", "timestamp": "t1", "likesCount": 3}]
	}`)

	post := Normalize(raw)
	assert.Equal(t, "3301", post.PostID)
	assert.Equal(t, "C1abc", post.Shortcode)
	assert.Equal(t, "Image", post.MediaType)
	assert.Equal(t, "https://cdn.example/C1abc.jpg", post.MediaURL)
	assert.Equal(t, "Yosemite", post.Location)
	assert.Equal(t, int64(128), post.EngagementRate)
	assert.Equal(t, []string{"hike"}, post.Hashtags)
	require.Len(t, post.TopComments, 1)
	assert.Equal(t, models.Comment{Text: "wow", Owner: "a", Timestamp: "t1", LikesCount: 3}, post.TopComments[0])
	assert.Empty(t, post.VideoURL)
	assert.Nil(t, post.CarouselMedia)
}

func TestNormalizeVideo(t *testing.T) {
	post := Normalize(record(t, `{"type":"Video","videoUrl":"https://cdn.example/v.mp4","videoViewCount":900}`))
	assert.Equal(t, "https://cdn.example/v.mp4", post.VideoURL)
	assert.Equal(t, int64(900), post.VideoViewCount)

	missing := Normalize(record(t, `{"type":"Video"}`))
	assert.Equal(t, "", missing.VideoURL)
	assert.Zero(t, missing.VideoViewCount)
}

func TestNormalizeCarousel(t *testing.T) {
	post := Normalize(record(t, `{
		"type": "Carousel",
		"sidecarItems": [{"displayUrl": "u1"}, {}, {"displayUrl": "u3"}]
	}`))
	assert.Equal(t, []string{"u1", "", "u3"}, post.CarouselMedia)

	empty := Normalize(record(t, `{"type":"Carousel"}`))
	assert.NotNil(t, empty.CarouselMedia)
	assert.Empty(t, empty.CarouselMedia)
}

func TestCommentTruncation(t *testing.T) {
	build := func(n int) models.RawRecord {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = fmt.Sprintf(`{"text":"c%d"}`, i)
		}
		return record(t, `{"comments":[`+strings.Join(parts, ",")+`]}`)
	}

	for _, n := range []int{0, 3, 10, 11, 25} {
		t.Run(fmt.Sprintf("%d comments", n), func(t *testing.T) {
			post := Normalize(build(n))
			want := n
			if want > MaxTopComments {
				want = MaxTopComments
			}
			require.Len(t, post.TopComments, want)
			for i, c := range post.TopComments {
				assert.Equal(t, fmt.Sprintf("c%d", i), c.Text)
			}
		})
	}
}

func TestLatestCommentsFallback(t *testing.T) {
	post := Normalize(record(t, `{"latestComments":[{"text":"hi","ownerUsername":"b"}]}`))
	require.Len(t, post.TopComments, 1)
	assert.Equal(t, "b", post.TopComments[0].Owner)

	both := Normalize(record(t, `{"comments":[{"text":"a"}],"latestComments":[{"text":"b"}]}`))
	require.Len(t, both.TopComments, 1)
	assert.Equal(t, "a", both.TopComments[0].Text)
}

func TestClassify(t *testing.T) {
	tests := map[string]Bucket{
		"Video":    BucketReel,
		"Image":    BucketPost,
		"Carousel": BucketPost,
		"Sidecar":  BucketPost,
		"video":    BucketPost,
		"":         BucketPost,
	}
	for tag, want := range tests {
		assert.Equal(t, want, Classify(tag), "tag %q", tag)
	}
}

func TestClassifyIgnoresOtherFields(t *testing.T) {
	post := Normalize(record(t, `{"type":"Image","videoUrl":"https://cdn.example/v.mp4"}`))
	assert.Equal(t, BucketPost, Classify(post.MediaType))
	assert.Empty(t, post.VideoURL)
}

func TestBuildProfile(t *testing.T) {
	records := []models.RawRecord{
		record(t, `{"shortCode":"R1","type":"Video","owner":{"username":"naturelovers","fullName":"Nature","followersCount":1200,"followingCount":3,"postsCount":87,"isVerified":true}}`),
		record(t, `{"shortCode":"C1","type":"Carousel","sidecarItems":[{"displayUrl":"a"},{"displayUrl":"b"}]}`),
		record(t, `{"shortCode":"I1","type":"Image"}`),
	}

	summary := BuildProfile(records, "naturelovers", DefaultRecordLimit)
	require.NotNil(t, summary)

	assert.Equal(t, "naturelovers", summary.Username)
	assert.Equal(t, "Nature", summary.FullName)
	assert.Equal(t, int64(1200), summary.FollowersCount)
	assert.True(t, summary.IsVerified)
	assert.False(t, summary.IsPrivate)

	require.Len(t, summary.Reels, 1)
	require.Len(t, summary.Posts, 2)
	assert.Equal(t, "R1", summary.Reels[0].Shortcode)
	assert.Equal(t, "C1", summary.Posts[0].Shortcode)
	assert.Equal(t, "I1", summary.Posts[1].Shortcode)
}

func TestBuildProfileLimitAndFallback(t *testing.T) {
	records := make([]models.RawRecord, 8)
	summary := BuildProfile(records, "target", 5)
	require.NotNil(t, summary)

	assert.Equal(t, "target", summary.Username)
	assert.Len(t, summary.Posts, 5)
	assert.Empty(t, summary.Reels)
	assert.NotNil(t, summary.Reels)

	assert.Nil(t, BuildProfile(nil, "target", 5))
}

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"naturelovers", "naturelovers"},
		{"  naturelovers \n", "naturelovers"},
		{"@naturelovers", "naturelovers"},
		{"https://www.instagram.com/naturelovers/", "naturelovers"},
		{"https://www.instagram.com/naturelovers", "naturelovers"},
		{"instagram.com/naturelovers//", "naturelovers"},
		{"https://instagram.com/naturelovers/?hl=en", "naturelovers"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractUsername(tt.input), "input %q", tt.input)
	}
}

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/naturelovers/", ProfileURL("naturelovers"))
}
