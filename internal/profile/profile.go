// Package profile defines the candidate profile record consumed by the
// autofill pipeline, plus the narrow store interfaces the pipeline reads
// through.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Profile is one candidate's application data. All fields are plain strings;
// the value resolver owns any derivation (full name joins, salary math).
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`

	// Phone is a pre-formatted number; CountryCode+PhoneNumber, when both
	// present, take precedence over it.
	Phone       string `json:"phone"`
	CountryCode string `json:"phone_country_code"`
	PhoneNumber string `json:"phone_number"`

	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	LinkedInURL  string `json:"linkedin_url"`
	GitHubURL    string `json:"github_url"`
	PortfolioURL string `json:"portfolio_url"`
	Website      string `json:"website"`

	CurrentCompany  string `json:"current_company"`
	CurrentTitle    string `json:"current_title"`
	YearsExperience string `json:"years_experience"`
	DesiredSalary   string `json:"desired_salary"`

	WorkAuthorization   string `json:"work_authorization"`
	RequiresSponsorship string `json:"requires_sponsorship"`

	School         string `json:"school"`
	Degree         string `json:"degree"`
	FieldOfStudy   string `json:"field_of_study"`
	GraduationYear string `json:"graduation_year"`

	Pronouns       string `json:"pronouns"`
	ReferralSource string `json:"referral_source"`
	CoverLetter    string `json:"cover_letter"`
}

// IsZero reports whether the profile carries no data at all.
func (p *Profile) IsZero() bool {
	return strings.TrimSpace(p.FirstName) == "" &&
		strings.TrimSpace(p.LastName) == "" &&
		strings.TrimSpace(p.Email) == "" &&
		strings.TrimSpace(p.Phone) == "" &&
		strings.TrimSpace(p.PhoneNumber) == "" &&
		strings.TrimSpace(p.City) == "" &&
		strings.TrimSpace(p.LinkedInURL) == "" &&
		strings.TrimSpace(p.CurrentCompany) == "" &&
		strings.TrimSpace(p.School) == ""
}

// Store reads profiles. Read-only to the autofill core.
type Store interface {
	GetProfile(ctx context.Context, profileID string) (*Profile, error)
}

// AliasOverride is one tenant-supplied label alias.
type AliasOverride struct {
	CanonicalKey string `json:"canonical_key"`
	Alias        string `json:"alias"`
}

// AliasOverrideStore lists tenant alias overrides applied on top of the
// built-in dictionary.
type AliasOverrideStore interface {
	ListCustomAliases(ctx context.Context) ([]AliasOverride, error)
}

// FileStore serves profiles and alias overrides from a single JSON document:
//
//	{
//	  "profiles": { "<id>": { ...profile fields... } },
//	  "aliases":  [ { "canonical_key": "...", "alias": "..." } ]
//	}
//
// The file is read once and cached; Reload picks up edits.
type FileStore struct {
	path string

	mu       sync.RWMutex
	profiles map[string]*Profile
	aliases  []AliasOverride
}

type fileDoc struct {
	Profiles map[string]*Profile `json:"profiles"`
	Aliases  []AliasOverride     `json:"aliases"`
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, profiles: make(map[string]*Profile)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the backing file. A missing file yields an empty store so
// a fresh install can start before any profile exists.
func (s *FileStore) Reload() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.profiles = make(map[string]*Profile)
		s.aliases = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read profile store: %w", err)
	}
	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse profile store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Profiles != nil {
		s.profiles = doc.Profiles
	} else {
		s.profiles = make(map[string]*Profile)
	}
	s.aliases = doc.Aliases
	return nil
}

func (s *FileStore) GetProfile(ctx context.Context, profileID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("profile not found: %s", profileID)
	}
	cp := *p
	return &cp, nil
}

func (s *FileStore) ListCustomAliases(ctx context.Context) ([]AliasOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AliasOverride, len(s.aliases))
	copy(out, s.aliases)
	return out, nil
}

// ProfileIDs returns the ids available in the store, for tool listings.
func (s *FileStore) ProfileIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	return ids
}
