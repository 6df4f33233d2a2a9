package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// DefaultProfile names the credential used when none is given.
const DefaultProfile = "default"

// Credential is a stored API token.
type Credential struct {
	Profile      string    `json:"profile"`
	Token        string    `json:"token"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is a backend able to persist API tokens by profile.
type CredentialStore interface {
	Store(cred *Credential) error
	Retrieve(profile string) (*Credential, error)
	List() ([]*Credential, error)
	Delete(profile string) error
	Exists(profile string) bool
	Name() string
}

// Manager consults its stores in order. Writes go to the first store that
// accepts them; reads return the first hit.
type Manager struct {
	stores []CredentialStore
}

// NewManager builds the default chain: system keyring when available, an
// encrypted file in the config directory, then the environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	fs, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, fs, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over an explicit chain.
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store validates and saves cred.
func (m *Manager) Store(cred *Credential) (string, error) {
	if cred == nil {
		return "", ErrInvalidCredentials
	}
	cred.Token = strings.TrimSpace(cred.Token)
	if cred.Token == "" {
		return "", errors.New("token is required")
	}
	if cred.Profile == "" {
		cred.Profile = DefaultProfile
	}
	cred.LastModified = time.Now()

	var errs []error
	for _, s := range m.stores {
		err := s.Store(cred)
		if err == nil {
			return s.Name(), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return "", ErrStoreUnavailable
	}
	return "", fmt.Errorf("failed to store token: %w", errors.Join(errs...))
}

// Retrieve returns the credential for profile from the first store holding it.
func (m *Manager) Retrieve(profile string) (*Credential, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, s := range m.stores {
		if cred, err := s.Retrieve(profile); err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
}

// Token is a shorthand for the default profile's token.
func (m *Manager) Token() (string, error) {
	cred, err := m.Retrieve(DefaultProfile)
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

// List merges all stores, keeping the newest entry per profile.
func (m *Manager) List() ([]*Credential, error) {
	latest := make(map[string]*Credential)
	for _, s := range m.stores {
		creds, err := s.List()
		if err != nil {
			continue
		}
		for _, c := range creds {
			if prev, ok := latest[c.Profile]; !ok || c.LastModified.After(prev.LastModified) {
				latest[c.Profile] = c
			}
		}
	}

	out := make([]*Credential, 0, len(latest))
	for _, c := range latest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out, nil
}

// Delete removes profile from every store that has it.
func (m *Manager) Delete(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}
	var removed bool
	for _, s := range m.stores {
		if err := s.Delete(profile); err == nil {
			removed = true
		}
	}
	if !removed {
		return fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
	}
	return nil
}

// Sources reports which stores currently hold profile.
func (m *Manager) Sources(profile string) []string {
	var names []string
	for _, s := range m.stores {
		if s.Exists(profile) {
			names = append(names, s.Name())
		}
	}
	return names
}

func getConfigDir() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "igprofile")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "igprofile")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "igprofile")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "igprofile")
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// MaskToken hides all but the first and last four characters.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
