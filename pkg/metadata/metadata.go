// Package metadata writes JSON snapshots of a scrape next to its CSV files.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"igprofile/pkg/models"
	"igprofile/pkg/storage"
)

// File name suffixes appended to the username.
const (
	RawSuffix     = "_raw.json"
	SummarySuffix = "_summary.json"
)

// Snapshot is the raw dataset as returned by the actor, with the run it
// came from.
type Snapshot struct {
	InvocationID string          `json:"invocation_id"`
	Username     string          `json:"username"`
	RunID        string          `json:"run_id,omitempty"`
	DatasetID    string          `json:"dataset_id"`
	RunStatus    string          `json:"run_status,omitempty"`
	Partial      bool            `json:"partial"`
	CapturedAt   time.Time       `json:"captured_at"`
	Items        json.RawMessage `json:"items"`
}

// Writer writes snapshot files into a directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// RawPath returns the snapshot path for username.
func (w *Writer) RawPath(username string) string {
	return filepath.Join(w.dir, username+RawSuffix)
}

// SummaryPath returns the summary path for username.
func (w *Writer) SummaryPath(username string) string {
	return filepath.Join(w.dir, username+SummarySuffix)
}

// WriteRaw saves snap. A nil or empty Items is stored as an empty array.
func (w *Writer) WriteRaw(snap *Snapshot) (string, error) {
	if len(snap.Items) == 0 {
		snap.Items = json.RawMessage("[]")
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	path := w.RawPath(snap.Username)
	if err := writeJSON(path, snap); err != nil {
		return "", fmt.Errorf("failed to write raw snapshot: %w", err)
	}
	return path, nil
}

// WriteSummary saves the normalized profile, including download outcomes.
func (w *Writer) WriteSummary(summary *models.ProfileSummary) (string, error) {
	path := w.SummaryPath(summary.Username)
	if err := writeJSON(path, summary); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}

// LoadRaw reads a snapshot written by WriteRaw.
func LoadRaw(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Records decodes the snapshot items.
func (s *Snapshot) Records() ([]models.RawRecord, error) {
	var records []models.RawRecord
	if err := json.Unmarshal(s.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot items: %w", err)
	}
	return records, nil
}

// TruncateCaption shortens a caption for display, keeping whole runes.
func TruncateCaption(caption string, maxLength int) string {
	r := []rune(caption)
	if maxLength <= 3 || len(r) <= maxLength {
		return caption
	}
	return string(r[:maxLength-3]) + "..."
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return storage.AtomicWrite(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}
