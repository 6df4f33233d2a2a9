package apify

import (
	"net/url"
	"strings"
)

const (
	// BaseURL is the Apify REST API root
	BaseURL = "https://api.apify.com/v2"

	// InstagramActorID is the public Instagram scraper actor.
	InstagramActorID = "apify~instagram-scraper"
)

// normalizeActorID converts "owner/name" into the "owner~name" form the
// REST API expects in paths.
func normalizeActorID(actorID string) string {
	return strings.Replace(actorID, "/", "~", 1)
}

// RunsURL is the endpoint that starts a new run of actorID.
func RunsURL(base, actorID string) string {
	return strings.TrimRight(base, "/") + "/acts/" + url.PathEscape(normalizeActorID(actorID)) + "/runs"
}

// RunURL is the endpoint describing a single run.
func RunURL(base, runID string) string {
	return strings.TrimRight(base, "/") + "/actor-runs/" + url.PathEscape(runID)
}

// DatasetItemsURL lists the items of a dataset as a clean JSON array.
func DatasetItemsURL(base, datasetID string) string {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("clean", "true")
	return strings.TrimRight(base, "/") + "/datasets/" + url.PathEscape(datasetID) + "/items?" + params.Encode()
}
