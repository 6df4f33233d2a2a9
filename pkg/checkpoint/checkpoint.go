package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"igprofile/pkg/logger"
	"igprofile/pkg/models"
	"igprofile/pkg/storage"
)

// FileVersion is written into every runs file.
const FileVersion = 1

// runsFile is the on-disk document.
type runsFile struct {
	Version   int                          `json:"version"`
	UpdatedAt time.Time                    `json:"updated_at"`
	Runs      map[string]*models.RunRecord `json:"runs"`
}

// Store keeps the most recent actor run per username in one JSON file.
type Store struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

// NewStore returns a Store backed by path. An empty path selects
// runs.json in the per-user data directory.
func NewStore(path string, log logger.Logger) (*Store, error) {
	if path == "" {
		dataDir, err := getDataDirectory()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		path = filepath.Join(dataDir, "runs.json")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{path: path, logger: log}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*runsFile, error) {
	doc := &runsFile{Version: FileVersion, Runs: make(map[string]*models.RunRecord)}

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to open runs file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode runs file: %w", err)
	}
	if doc.Runs == nil {
		doc.Runs = make(map[string]*models.RunRecord)
	}
	return doc, nil
}

func (s *Store) save(doc *runsFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}
	doc.Version = FileVersion
	doc.UpdatedAt = time.Now()

	return storage.AtomicWrite(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}

// Get returns the recorded run for username, or nil when there is none.
func (s *Store) Get(username string) (*models.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Runs[username]
	if !ok {
		return nil, nil
	}

	s.logger.DebugWithFields("Run record loaded", map[string]interface{}{
		"username":   username,
		"run_id":     rec.RunID,
		"dataset_id": rec.DatasetID,
		"age":        time.Since(rec.FinishedAt),
	})
	return rec, nil
}

// Put records rec under its username, replacing any earlier run.
func (s *Store) Put(rec *models.RunRecord) error {
	if rec == nil || rec.Username == "" {
		return fmt.Errorf("run record needs a username")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Runs[rec.Username] = rec
	if err := s.save(doc); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	s.logger.DebugWithFields("Run record saved", map[string]interface{}{
		"username":   rec.Username,
		"run_id":     rec.RunID,
		"dataset_id": rec.DatasetID,
		"items":      rec.ItemCount,
	})
	return nil
}

// Delete forgets the run for username. Unknown usernames are not an error.
func (s *Store) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Runs[username]; !ok {
		return nil
	}
	delete(doc.Runs, username)
	return s.save(doc)
}

// List returns all records sorted by username.
func (s *Store) List() ([]*models.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*models.RunRecord, 0, len(doc.Runs))
	for _, rec := range doc.Runs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "igprofile")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "igprofile")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			dataDir = filepath.Join(xdg, "igprofile")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "igprofile")
		}
	}
	return dataDir, nil
}
