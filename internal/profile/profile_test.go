package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const storeDoc = `{
  "profiles": {
    "amin": {
      "first_name": "Amin",
      "last_name": "Khan",
      "email": "amin@email.com",
      "phone_country_code": "+1",
      "phone_number": "5551234567",
      "desired_salary": "$120,000"
    }
  },
  "aliases": [
    {"canonical_key": "referral_source", "alias": "How did you hear about this role"}
  ]
}`

func writeStore(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileStoreLoadsProfilesAndAliases(t *testing.T) {
	s, err := NewFileStore(writeStore(t, storeDoc))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	p, err := s.GetProfile(context.Background(), "amin")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.FirstName != "Amin" || p.Email != "amin@email.com" || p.DesiredSalary != "$120,000" {
		t.Errorf("unexpected profile: %+v", p)
	}

	aliases, err := s.ListCustomAliases(context.Background())
	if err != nil {
		t.Fatalf("ListCustomAliases: %v", err)
	}
	if len(aliases) != 1 || aliases[0].CanonicalKey != "referral_source" {
		t.Errorf("unexpected aliases: %+v", aliases)
	}

	ids := s.ProfileIDs()
	if len(ids) != 1 || ids[0] != "amin" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := s.GetProfile(context.Background(), "anyone"); err == nil {
		t.Error("expected error for unknown profile")
	}
	if len(s.ProfileIDs()) != 0 {
		t.Error("expected empty store")
	}
}

func TestFileStoreRejectsMalformedJSON(t *testing.T) {
	if _, err := NewFileStore(writeStore(t, "{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetProfileReturnsCopy(t *testing.T) {
	s, err := NewFileStore(writeStore(t, storeDoc))
	if err != nil {
		t.Fatal(err)
	}
	p1, _ := s.GetProfile(context.Background(), "amin")
	p1.FirstName = "Mutated"
	p2, _ := s.GetProfile(context.Background(), "amin")
	if p2.FirstName != "Amin" {
		t.Error("store handed out a shared pointer")
	}
}

func TestReloadPicksUpEdits(t *testing.T) {
	path := writeStore(t, storeDoc)
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	updated := `{"profiles": {"dana": {"first_name": "Dana"}}}`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, err := s.GetProfile(context.Background(), "amin"); err == nil {
		t.Error("old profile survived reload")
	}
	if _, err := s.GetProfile(context.Background(), "dana"); err != nil {
		t.Errorf("new profile missing after reload: %v", err)
	}
}

func TestIsZero(t *testing.T) {
	var p Profile
	if !p.IsZero() {
		t.Error("empty profile should be zero")
	}
	p.Email = "x@y.z"
	if p.IsZero() {
		t.Error("profile with email is not zero")
	}
}
