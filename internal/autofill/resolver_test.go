package autofill

import (
	"testing"

	"applynerd-mcp-server/internal/config"
	"applynerd-mcp-server/internal/profile"
)

// recordingPolicy verifies the policy hook is consulted rather than bypassed.
type recordingPolicy struct {
	askedKeys []string
	answers   map[string]string
	skip      map[string]bool
}

func (p *recordingPolicy) SkipSet() map[string]bool {
	if p.skip == nil {
		return map[string]bool{}
	}
	return p.skip
}

func (p *recordingPolicy) Answer(key string) (string, bool) {
	p.askedKeys = append(p.askedKeys, key)
	v, ok := p.answers[key]
	return v, ok
}

func TestResolveFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Amin", "Khan", "Amin Khan"},
		{"Amin", "", "Amin"},
		{"", "Khan", "Khan"},
		{"  Amin  ", " Khan ", "Amin Khan"},
		{"", "", ""},
	}
	for _, tt := range tests {
		values := ResolveValues(&profile.Profile{FirstName: tt.first, LastName: tt.last}, nil)
		if got := values[KeyFullName]; got != tt.want {
			t.Errorf("full_name for (%q,%q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestResolvePhonePrefersComposition(t *testing.T) {
	p := &profile.Profile{
		Phone:       "(555) 123-4567",
		CountryCode: "+1",
		PhoneNumber: "5551234567",
	}
	values := ResolveValues(p, nil)
	if got := values[KeyPhone]; got != "+1 5551234567" {
		t.Errorf("phone = %q, want composed country code + number", got)
	}

	// Without the composed parts, the pre-formatted string stands.
	values = ResolveValues(&profile.Profile{Phone: "(555) 123-4567"}, nil)
	if got := values[KeyPhone]; got != "(555) 123-4567" {
		t.Errorf("phone = %q, want pre-formatted fallback", got)
	}
}

func TestResolveCurrentLocation(t *testing.T) {
	tests := []struct {
		city, state, country, want string
	}{
		{"Austin", "TX", "USA", "Austin, TX, USA"},
		{"Austin", "", "USA", "Austin, USA"},
		{"", "", "", ""},
		{"", "TX", "", "TX"},
	}
	for _, tt := range tests {
		values := ResolveValues(&profile.Profile{City: tt.city, State: tt.state, Country: tt.country}, nil)
		if got := values[KeyCurrentLocation]; got != tt.want {
			t.Errorf("current_location = %q, want %q", got, tt.want)
		}
	}
}

func TestResolveHourlyRate(t *testing.T) {
	tests := []struct {
		salary string
		want   string
	}{
		{"$120,000", "62"},
		{"120000", "62"},
		{"€95,000.00", "49"},
		{"competitive", ""},
		{"", ""},
		{"$0", ""},
	}
	for _, tt := range tests {
		values := ResolveValues(&profile.Profile{DesiredSalary: tt.salary}, nil)
		if got := values[KeyHourlyRate]; got != tt.want {
			t.Errorf("hourly_rate for %q = %q, want %q", tt.salary, got, tt.want)
		}
	}
}

func TestResolveEveryKeyPresent(t *testing.T) {
	values := ResolveValues(&profile.Profile{}, nil)
	for _, key := range []string{
		KeyFullName, KeyEmail, KeyPhone, KeyCurrentLocation, KeyHourlyRate,
		KeyEEOGender, KeyEEORace, KeyEEOVeteran, KeyEEODisability,
		KeyStartDate, KeyNoticePeriod, KeyCoverLetter,
	} {
		if _, present := values[key]; !present {
			t.Errorf("key %q missing from resolved map", key)
		}
	}
}

func TestResolveConsultsPolicyHook(t *testing.T) {
	pol := &recordingPolicy{answers: map[string]string{
		KeyEEOGender:    "man",
		KeyStartDate:    "Immediately",
		KeyNoticePeriod: "2 weeks",
	}}
	values := ResolveValues(&profile.Profile{FirstName: "Amin"}, pol)

	asked := make(map[string]bool)
	for _, k := range pol.askedKeys {
		asked[k] = true
	}
	for _, key := range []string{KeyEEOGender, KeyEEORace, KeyEEOVeteran, KeyEEODisability, KeyStartDate, KeyNoticePeriod} {
		if !asked[key] {
			t.Errorf("policy hook not consulted for %q", key)
		}
	}
	if values[KeyEEOGender] != "man" {
		t.Errorf("eeo_gender = %q, want policy answer", values[KeyEEOGender])
	}
	if values[KeyEEORace] != "" {
		t.Errorf("eeo_race_ethnicity = %q, want empty without policy answer", values[KeyEEORace])
	}
	if values[KeyNoticePeriod] != "2 weeks" {
		t.Errorf("notice_period = %q, want policy answer", values[KeyNoticePeriod])
	}
}

func TestConfigPolicyEEOConsentGate(t *testing.T) {
	base := config.PolicyConfig{
		EEOGender:        "man",
		EEORaceEthnicity: "Asian",
		EEOVeteran:       "I am not a protected veteran",
		EEODisability:    "No, I do not have a disability",
		StartDate:        "Immediately",
		NoticePeriod:     "2 weeks",
	}

	withoutConsent := NewConfigPolicy(base)
	for _, key := range EEOKeys {
		if v, ok := withoutConsent.Answer(key); ok {
			t.Errorf("EEO key %q answered %q without consent", key, v)
		}
	}
	// Scheduling defaults are not consent-gated.
	if v, ok := withoutConsent.Answer(KeyStartDate); !ok || v != "Immediately" {
		t.Errorf("start_date = %q ok=%v, want ungated default", v, ok)
	}

	base.EEOConsent = true
	withConsent := NewConfigPolicy(base)
	if v, ok := withConsent.Answer(KeyEEOGender); !ok || v != "man" {
		t.Errorf("eeo_gender with consent = %q ok=%v", v, ok)
	}
	if v, ok := withConsent.Answer(KeyEEOVeteran); !ok || v != "I am not a protected veteran" {
		t.Errorf("eeo_veteran with consent = %q ok=%v", v, ok)
	}
}

func TestConfigPolicySkipSet(t *testing.T) {
	pol := NewConfigPolicy(config.PolicyConfig{SkipKeys: []string{"Cover Letter", "referral_source"}})
	skip := pol.SkipSet()
	if !skip[Normalize(KeyCoverLetter)] {
		t.Error("cover_letter missing from skip set")
	}
	if !skip[Normalize(KeyReferralSource)] {
		t.Error("referral_source missing from skip set")
	}
}
