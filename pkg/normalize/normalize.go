// Package normalize maps raw actor dataset items onto the fixed post and
// profile shapes used by the downloader and exporter.
package normalize

import (
	"strings"

	"igprofile/pkg/models"
)

// MaxTopComments is how many comments are kept per post, in received order.
const MaxTopComments = 10

// DefaultRecordLimit is how many records are processed per profile.
const DefaultRecordLimit = 5

// Bucket is the output partition a post belongs to.
type Bucket string

const (
	BucketPost Bucket = "post"
	BucketReel Bucket = "reel"
)

// Classify maps a media type tag to its bucket. Only the literal tag
// "Video" is a reel.
func Classify(mediaType string) Bucket {
	if mediaType == models.MediaTypeVideo {
		return BucketReel
	}
	return BucketPost
}

// Normalize applies per-field defaults to raw and derives engagement,
// top comments and type-specific media fields.
func Normalize(raw models.RawRecord) *models.NormalizedPost {
	likes := int64Or(raw.LikesCount, 0)
	comments := int64Or(raw.CommentsCount, 0)

	post := &models.NormalizedPost{
		PostID:         stringOr(raw.ID, ""),
		Shortcode:      stringOr(raw.ShortCode, ""),
		Caption:        stringOr(raw.Caption, ""),
		LikesCount:     likes,
		CommentsCount:  comments,
		Timestamp:      stringOr(raw.Timestamp, ""),
		URL:            stringOr(raw.URL, ""),
		MediaType:      stringOr(raw.Type, ""),
		MediaURL:       stringOr(raw.DisplayURL, ""),
		Location:       locationName(raw.Location),
		Hashtags:       nonNil(raw.Hashtags),
		Mentions:       nonNil(raw.Mentions),
		EngagementRate: likes + comments,
		TopComments:    topComments(raw),
	}

	switch post.MediaType {
	case models.MediaTypeVideo:
		post.VideoURL = stringOr(raw.VideoURL, "")
		post.VideoViewCount = int64Or(raw.VideoViewCount, 0)
	case models.MediaTypeCarousel:
		post.CarouselMedia = make([]string, 0, len(raw.SidecarItems))
		for _, item := range raw.SidecarItems {
			post.CarouselMedia = append(post.CarouselMedia, stringOr(item.DisplayURL, ""))
		}
	}

	return post
}

func topComments(raw models.RawRecord) []models.Comment {
	src := raw.Comments
	if src == nil {
		src = raw.LatestComments
	}
	if len(src) > MaxTopComments {
		src = src[:MaxTopComments]
	}

	out := make([]models.Comment, 0, len(src))
	for _, c := range src {
		out = append(out, models.Comment{
			Text:       stringOr(c.Text, ""),
			Owner:      stringOr(c.OwnerUsername, ""),
			Timestamp:  stringOr(c.Timestamp, ""),
			LikesCount: int64Or(c.LikesCount, 0),
		})
	}
	return out
}

// BuildProfile normalizes at most limit records, splits them into posts and
// reels and fills profile fields from the first record's owner. It returns
// nil when records is empty.
func BuildProfile(records []models.RawRecord, username string, limit int) *models.ProfileSummary {
	if len(records) == 0 {
		return nil
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	summary := ownerProfile(records[0].Owner, username)
	summary.Posts = make([]*models.NormalizedPost, 0, len(records))
	summary.Reels = make([]*models.NormalizedPost, 0)

	for _, raw := range records {
		post := Normalize(raw)
		switch Classify(post.MediaType) {
		case BucketReel:
			summary.Reels = append(summary.Reels, post)
		default:
			summary.Posts = append(summary.Posts, post)
		}
	}
	return summary
}

func ownerProfile(owner *models.RawOwner, username string) *models.ProfileSummary {
	if owner == nil {
		owner = &models.RawOwner{}
	}
	return &models.ProfileSummary{
		Username:       stringOr(owner.Username, username),
		FullName:       stringOr(owner.FullName, ""),
		Biography:      stringOr(owner.Biography, ""),
		FollowersCount: int64Or(owner.FollowersCount, 0),
		FollowingCount: int64Or(owner.FollowingCount, 0),
		PostsCount:     int64Or(owner.PostsCount, 0),
		IsPrivate:      boolOr(owner.IsPrivate, false),
		IsVerified:     boolOr(owner.IsVerified, false),
		ProfilePicURL:  stringOr(owner.ProfilePicURL, ""),
		ExternalURL:    stringOr(owner.ExternalURL, ""),
	}
}

// ExtractUsername derives a bare username from a handle or profile URL.
func ExtractUsername(input string) string {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "instagram.com") {
		if i := strings.IndexAny(input, "?#"); i >= 0 {
			input = input[:i]
		}
		input = strings.TrimRight(input, "/")
		return input[strings.LastIndex(input, "/")+1:]
	}
	return strings.TrimPrefix(input, "@")
}

// ProfileURL returns the canonical profile URL for username.
func ProfileURL(username string) string {
	return "https://www.instagram.com/" + username + "/"
}

func locationName(loc *models.RawLocation) string {
	if loc == nil {
		return ""
	}
	return stringOr(loc.Name, "")
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func int64Or(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
