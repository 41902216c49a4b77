package autofill

import (
	"testing"

	"applynerd-mcp-server/internal/profile"
)

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"E-Mail Address",
		"  First   Name ",
		"What is your LinkedIn URL?",
		"already normalized",
		"",
		"___",
		"Años de experiencia",
	}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestNormalizeCollapsesPunctuation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"E-Mail Address", "e mail address"},
		{"EMAIL", "email"},
		{"First/Last  Name!!", "first last name"},
		{"  ", ""},
		{"Zip/Postal Code", "zip postal code"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchKnownAliases(t *testing.T) {
	idx := BuildAliasIndex(nil)

	tests := []struct {
		label string
		want  string
	}{
		{"E-Mail Address", KeyEmail},
		{"EMAIL", KeyEmail},
		{"First Name", KeyFirstName},
		{"Given Name", KeyFirstName},
		{"LinkedIn Profile", KeyLinkedInURL},
		{"How did you hear about us", KeyReferralSource},
		{"Salary Expectations", KeyDesiredSalary},
		{"Gender", KeyEEOGender},
		{"email", KeyEmail}, // canonical key is its own alias
	}
	for _, tt := range tests {
		got, ok := idx.Match(tt.label)
		if !ok {
			t.Errorf("Match(%q) found nothing, want %q", tt.label, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestMatchSquishedVariant(t *testing.T) {
	idx := BuildAliasIndex(nil)

	spaced, okSpaced := idx.Match("E Mail")
	plain, okPlain := idx.Match("email")
	if !okSpaced || !okPlain {
		t.Fatalf("expected both variants to match: spaced=%v plain=%v", okSpaced, okPlain)
	}
	if spaced != plain {
		t.Errorf("squished variant mismatch: %q vs %q", spaced, plain)
	}
}

func TestMatchEmptyInput(t *testing.T) {
	idx := BuildAliasIndex(nil)
	for _, s := range []string{"", "   ", "\t\n", "!!!"} {
		if key, ok := idx.Match(s); ok {
			t.Errorf("Match(%q) unexpectedly matched %q", s, key)
		}
	}
}

func TestTenantAliasesWinOnConflict(t *testing.T) {
	overrides := []profile.AliasOverride{
		{CanonicalKey: KeyWebsite, Alias: "LinkedIn Profile"},
		{CanonicalKey: KeyCurrentTitle, Alias: "Seniority"},
	}
	idx := BuildAliasIndex(overrides)

	if got, _ := idx.Match("LinkedIn Profile"); got != KeyWebsite {
		t.Errorf("tenant override lost conflict: got %q", got)
	}
	if got, _ := idx.Match("Seniority"); got != KeyCurrentTitle {
		t.Errorf("tenant alias not indexed: got %q", got)
	}
	// Untouched defaults still work.
	if got, _ := idx.Match("LinkedIn URL"); got != KeyLinkedInURL {
		t.Errorf("default alias broken by overrides: got %q", got)
	}
}

func TestMatchFieldPriorityOrder(t *testing.T) {
	idx := BuildAliasIndex(nil)

	// The placeholder would match desired_salary, but the label comes first
	// in priority order and matches email. Earlier priority wins even though
	// the placeholder scored higher during discovery.
	fd := FieldDescriptor{
		Label:       "E-Mail Address",
		Placeholder: "Salary Expectations",
		PromptCandidates: []PromptCandidate{
			{Source: "label", Text: "E-Mail Address", Score: 5},
		},
	}
	key, matched, ok := idx.MatchField(&fd)
	if !ok {
		t.Fatal("expected a canonical match")
	}
	if key != KeyEmail {
		t.Errorf("priority order violated: got %q, want %q", key, KeyEmail)
	}
	if matched != "E-Mail Address" {
		t.Errorf("unexpected matched label: %q", matched)
	}
}

func TestMatchFieldFallsThroughToName(t *testing.T) {
	idx := BuildAliasIndex(nil)

	fd := FieldDescriptor{
		QuestionText: "Tell us something unusual",
		Name:         "first_name",
	}
	key, _, ok := idx.MatchField(&fd)
	if !ok || key != KeyFirstName {
		t.Errorf("expected name attribute to match first_name, got %q ok=%v", key, ok)
	}
}

func TestMatchFieldNoMatch(t *testing.T) {
	idx := BuildAliasIndex(nil)
	fd := FieldDescriptor{
		QuestionText: "Describe a challenging project you led",
		Name:         "q_17",
	}
	if key, _, ok := idx.MatchField(&fd); ok {
		t.Errorf("expected no match, got %q", key)
	}
}
