package autofill

import (
	"math"
	"strconv"
	"strings"

	"applynerd-mcp-server/internal/config"
	"applynerd-mcp-server/internal/profile"
)

// Policy answers the canonical keys that have no profile source: sensitive
// EEO categories and scheduling defaults. The resolver always consults it;
// a Policy that withholds consent simply returns no value.
type Policy interface {
	// SkipSet lists canonical keys that must never be planned or executed.
	SkipSet() map[string]bool
	// Answer returns the policy-provided value for a key, if any.
	Answer(key string) (string, bool)
}

// ConfigPolicy implements Policy from the static fill configuration. EEO
// answers are only released when the operator set the consent flag.
type ConfigPolicy struct {
	cfg config.PolicyConfig
}

func NewConfigPolicy(cfg config.PolicyConfig) *ConfigPolicy {
	return &ConfigPolicy{cfg: cfg}
}

func (p *ConfigPolicy) SkipSet() map[string]bool {
	set := make(map[string]bool, len(p.cfg.SkipKeys))
	for _, k := range p.cfg.SkipKeys {
		set[Normalize(k)] = true
	}
	return set
}

func (p *ConfigPolicy) Answer(key string) (string, bool) {
	switch key {
	case KeyEEOGender, KeyEEORace, KeyEEOVeteran, KeyEEODisability:
		if !p.cfg.EEOConsent {
			return "", false
		}
		switch key {
		case KeyEEOGender:
			return p.cfg.EEOGender, p.cfg.EEOGender != ""
		case KeyEEORace:
			return p.cfg.EEORaceEthnicity, p.cfg.EEORaceEthnicity != ""
		case KeyEEOVeteran:
			return p.cfg.EEOVeteran, p.cfg.EEOVeteran != ""
		default:
			return p.cfg.EEODisability, p.cfg.EEODisability != ""
		}
	case KeyStartDate:
		return p.cfg.StartDate, p.cfg.StartDate != ""
	case KeyNoticePeriod:
		return p.cfg.NoticePeriod, p.cfg.NoticePeriod != ""
	}
	return "", false
}

// JobContext is optional context about the opening being applied to. It only
// informs the generative tier; the resolver itself has no job-specific rules.
type JobContext struct {
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// ResolveValues flattens a profile into canonical-key -> literal value. Every
// canonical key appears in the map; unavailable values are empty strings.
func ResolveValues(p *profile.Profile, policy Policy) map[string]string {
	joinNonEmpty := func(sep string, parts ...string) string {
		kept := parts[:0:0]
		for _, s := range parts {
			if s = strings.TrimSpace(s); s != "" {
				kept = append(kept, s)
			}
		}
		return strings.Join(kept, sep)
	}

	phone := strings.TrimSpace(p.Phone)
	if cc, num := strings.TrimSpace(p.CountryCode), strings.TrimSpace(p.PhoneNumber); cc != "" && num != "" {
		phone = cc + " " + num
	} else if num != "" {
		phone = num
	}

	values := map[string]string{
		KeyFullName:         joinNonEmpty(" ", p.FirstName, p.LastName),
		KeyFirstName:        strings.TrimSpace(p.FirstName),
		KeyLastName:         strings.TrimSpace(p.LastName),
		KeyEmail:            strings.TrimSpace(p.Email),
		KeyPhone:            phone,
		KeyPhoneCountryCode: strings.TrimSpace(p.CountryCode),
		KeyAddress:          strings.TrimSpace(p.Address),
		KeyCity:             strings.TrimSpace(p.City),
		KeyState:            strings.TrimSpace(p.State),
		KeyPostalCode:       strings.TrimSpace(p.PostalCode),
		KeyCountry:          strings.TrimSpace(p.Country),
		KeyCurrentLocation:  joinNonEmpty(", ", p.City, p.State, p.Country),
		KeyLinkedInURL:      strings.TrimSpace(p.LinkedInURL),
		KeyGitHubURL:        strings.TrimSpace(p.GitHubURL),
		KeyPortfolioURL:     strings.TrimSpace(p.PortfolioURL),
		KeyWebsite:          strings.TrimSpace(p.Website),
		KeyCurrentCompany:   strings.TrimSpace(p.CurrentCompany),
		KeyCurrentTitle:     strings.TrimSpace(p.CurrentTitle),
		KeyYearsExperience:  strings.TrimSpace(p.YearsExperience),
		KeyDesiredSalary:    strings.TrimSpace(p.DesiredSalary),
		KeyHourlyRate:       "",
		KeyWorkAuth:         strings.TrimSpace(p.WorkAuthorization),
		KeyNeedsSponsorship: strings.TrimSpace(p.RequiresSponsorship),
		KeyStartDate:        "",
		KeyNoticePeriod:     "",
		KeySchool:           strings.TrimSpace(p.School),
		KeyDegree:           strings.TrimSpace(p.Degree),
		KeyFieldOfStudy:     strings.TrimSpace(p.FieldOfStudy),
		KeyGraduationYear:   strings.TrimSpace(p.GraduationYear),
		KeyCoverLetter:      strings.TrimSpace(p.CoverLetter),
		KeyReferralSource:   strings.TrimSpace(p.ReferralSource),
		KeyPronouns:         strings.TrimSpace(p.Pronouns),
		KeyEEOGender:        "",
		KeyEEORace:          "",
		KeyEEOVeteran:       "",
		KeyEEODisability:    "",
	}

	if annual, ok := parseSalary(p.DesiredSalary); ok {
		values[KeyHourlyRate] = strconv.Itoa(int(math.Floor(annual / 12 / 160)))
	}

	if policy != nil {
		for _, key := range []string{KeyEEOGender, KeyEEORace, KeyEEOVeteran, KeyEEODisability, KeyStartDate, KeyNoticePeriod} {
			if v, ok := policy.Answer(key); ok {
				values[key] = v
			}
		}
	}

	return values
}

// parseSalary strips currency symbols and thousands separators, then parses
// an annual salary figure. Non-positive or unparseable input yields no value.
func parseSalary(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
