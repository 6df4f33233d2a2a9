// Package storage owns the on-disk layout of downloaded media.
//
// Files live under <root>/<content type>/, where the content type is
// "post" or "reel". Single media are stored as <shortcode>.jpg or
// <shortcode>.mp4; carousel items get their own directory with 1.jpg,
// 2.jpg and so on.
//
// Every write goes through a temporary file in the destination directory
// and is renamed into place, so a failed or interrupted download never
// leaves a partial file under the final name.
package storage
