// Package ratelimit paces media requests to the CDN.
//
// The downloader calls Wait before every GET. Limits are expressed in
// requests per minute; PerMinute(0) returns a limiter that never blocks.
package ratelimit
