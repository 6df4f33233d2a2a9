package auth

import (
	"os"
	"strings"
	"time"

	"igprofile/pkg/config"
)

// EnvironmentStore exposes APIFY_API_TOKEN as the default profile. It is
// read-only.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

func (e *EnvironmentStore) Store(*Credential) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(profile string) (*Credential, error) {
	token := strings.TrimSpace(os.Getenv(config.TokenEnvVar))
	if config.IsPlaceholderToken(token) {
		return nil, ErrCredentialsNotFound
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &Credential{Profile: profile, Token: token, LastModified: time.Now()}, nil
}

func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve(DefaultProfile)
	if err != nil {
		return []*Credential{}, nil
	}
	return []*Credential{cred}, nil
}

func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(string) bool {
	_, err := e.Retrieve(DefaultProfile)
	return err == nil
}
