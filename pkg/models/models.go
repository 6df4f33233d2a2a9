package models

import "time"

// Media type tags as reported by the scraping actor.
const (
	MediaTypeImage    = "Image"
	MediaTypeVideo    = "Video"
	MediaTypeCarousel = "Carousel"
)

// ProxyConfig selects the proxy pool the actor crawls through.
type ProxyConfig struct {
	UseApifyProxy    bool     `json:"useApifyProxy"`
	ApifyProxyGroups []string `json:"apifyProxyGroups"`
}

// ScrapeJobSpec is the input document submitted to the actor.
type ScrapeJobSpec struct {
	DirectURLs        []string    `json:"directUrls"`
	ResultsType       string      `json:"resultsType"`
	ResultsLimit      int         `json:"resultsLimit"`
	AddParentData     bool        `json:"addParentData"`
	SearchType        string      `json:"searchType"`
	SearchLimit       int         `json:"searchLimit"`
	Proxy             ProxyConfig `json:"proxy"`
	MaxRequestRetries int         `json:"maxRequestRetries"`
	MaxConcurrency    int         `json:"maxConcurrency"`
}

// RawRecord is one dataset item as returned by the actor. Every field is
// optional; absence is represented by a nil pointer or nil slice.
type RawRecord struct {
	ID             *string      `json:"id,omitempty"`
	ShortCode      *string      `json:"shortCode,omitempty"`
	Caption        *string      `json:"caption,omitempty"`
	LikesCount     *int64       `json:"likesCount,omitempty"`
	CommentsCount  *int64       `json:"commentsCount,omitempty"`
	Timestamp      *string      `json:"timestamp,omitempty"`
	URL            *string      `json:"url,omitempty"`
	Type           *string      `json:"type,omitempty"`
	DisplayURL     *string      `json:"displayUrl,omitempty"`
	VideoURL       *string      `json:"videoUrl,omitempty"`
	VideoViewCount *int64       `json:"videoViewCount,omitempty"`
	Location       *RawLocation `json:"location,omitempty"`
	Hashtags       []string     `json:"hashtags,omitempty"`
	Mentions       []string     `json:"mentions,omitempty"`
	Comments       []RawComment `json:"comments,omitempty"`
	LatestComments []RawComment `json:"latestComments,omitempty"`
	SidecarItems   []RawSidecar `json:"sidecarItems,omitempty"`
	Owner          *RawOwner    `json:"owner,omitempty"`
}

// RawLocation is the tagged place of a post.
type RawLocation struct {
	Name *string `json:"name,omitempty"`
}

// RawComment is a comment as embedded in a RawRecord.
type RawComment struct {
	Text          *string `json:"text,omitempty"`
	OwnerUsername *string `json:"ownerUsername,omitempty"`
	Timestamp     *string `json:"timestamp,omitempty"`
	LikesCount    *int64  `json:"likesCount,omitempty"`
}

// RawSidecar is one child item of a carousel.
type RawSidecar struct {
	DisplayURL *string `json:"displayUrl,omitempty"`
}

// RawOwner is the parent profile attached to each record.
type RawOwner struct {
	Username       *string `json:"username,omitempty"`
	FullName       *string `json:"fullName,omitempty"`
	Biography      *string `json:"biography,omitempty"`
	FollowersCount *int64  `json:"followersCount,omitempty"`
	FollowingCount *int64  `json:"followingCount,omitempty"`
	PostsCount     *int64  `json:"postsCount,omitempty"`
	IsPrivate      *bool   `json:"isPrivate,omitempty"`
	IsVerified     *bool   `json:"isVerified,omitempty"`
	ProfilePicURL  *string `json:"profilePicUrl,omitempty"`
	ExternalURL    *string `json:"externalUrl,omitempty"`
}

// Comment is a normalized comment owned by exactly one post.
type Comment struct {
	Text       string `json:"text"`
	Owner      string `json:"owner"`
	Timestamp  string `json:"timestamp"`
	LikesCount int64  `json:"likes_count"`
}

// NormalizedPost is a record after defaults and derivations are applied.
// VideoURL and VideoViewCount are only set for videos; CarouselMedia only
// for carousels. DownloadedFile stays empty until a fetch succeeds.
type NormalizedPost struct {
	PostID         string    `json:"post_id"`
	Shortcode      string    `json:"shortcode"`
	Caption        string    `json:"caption"`
	LikesCount     int64     `json:"likes_count"`
	CommentsCount  int64     `json:"comments_count"`
	Timestamp      string    `json:"timestamp"`
	URL            string    `json:"url"`
	MediaType      string    `json:"media_type"`
	MediaURL       string    `json:"media_url"`
	Location       string    `json:"location"`
	Hashtags       []string  `json:"hashtags"`
	Mentions       []string  `json:"mentions"`
	EngagementRate int64     `json:"engagement_rate"`
	TopComments    []Comment `json:"top_comments"`
	VideoURL       string    `json:"video_url,omitempty"`
	VideoViewCount int64     `json:"video_view_count,omitempty"`
	CarouselMedia  []string  `json:"carousel_media,omitempty"`
	DownloadedFile string    `json:"downloaded_file,omitempty"`
}

// IsVideo reports whether the post belongs in the reels bucket.
func (p *NormalizedPost) IsVideo() bool {
	return p.MediaType == MediaTypeVideo
}

// IsCarousel reports whether the post is a multi-item carousel.
func (p *NormalizedPost) IsCarousel() bool {
	return p.MediaType == MediaTypeCarousel
}

// ProfileSummary aggregates the profile fields and both post buckets.
type ProfileSummary struct {
	Username       string            `json:"username"`
	FullName       string            `json:"full_name"`
	Biography      string            `json:"biography"`
	FollowersCount int64             `json:"followers_count"`
	FollowingCount int64             `json:"following_count"`
	PostsCount     int64             `json:"posts_count"`
	IsPrivate      bool              `json:"is_private"`
	IsVerified     bool              `json:"is_verified"`
	ProfilePicURL  string            `json:"profile_pic_url"`
	ExternalURL    string            `json:"external_url"`
	Posts          []*NormalizedPost `json:"posts"`
	Reels          []*NormalizedPost `json:"reels"`
}

// Engagement sums likes and comments across a bucket.
type Engagement struct {
	Likes    int64
	Comments int64
}

// TotalEngagement returns likes and comment counts summed over posts.
func TotalEngagement(posts []*NormalizedPost) Engagement {
	var e Engagement
	for _, p := range posts {
		e.Likes += p.LikesCount
		e.Comments += p.CommentsCount
	}
	return e
}

// RunRecord remembers the last actor run for a username.
type RunRecord struct {
	InvocationID string    `json:"invocation_id"`
	Username     string    `json:"username"`
	RunID        string    `json:"run_id"`
	DatasetID    string    `json:"dataset_id"`
	Status       string    `json:"status"`
	ItemCount    int       `json:"item_count"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}
