package autofill

import (
	"regexp"
	"strings"

	"applynerd-mcp-server/internal/profile"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases a label, collapses every run of non-alphanumeric
// characters to a single space, and trims. Idempotent: normalizing an
// already-normalized string is a no-op.
func Normalize(label string) string {
	s := strings.ToLower(label)
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Squish is the normalized form with all whitespace removed. It tolerates
// spacing and punctuation drift ("E-Mail" vs "Email").
func Squish(label string) string {
	return strings.ReplaceAll(Normalize(label), " ", "")
}

// AliasIndex is the immutable lookup structure from label forms to canonical
// keys. Build it once per request via BuildAliasIndex.
type AliasIndex struct {
	byNorm   map[string]string
	bySquish map[string]string
}

// BuildAliasIndex merges the built-in alias table with tenant overrides and
// indexes both the normalized and squished form of every alias. Overrides are
// applied after the defaults, so a tenant alias wins on conflict. Every
// canonical key is also indexed as its own alias.
func BuildAliasIndex(overrides []profile.AliasOverride) *AliasIndex {
	idx := &AliasIndex{
		byNorm:   make(map[string]string),
		bySquish: make(map[string]string),
	}

	for key, aliases := range defaultAliases {
		idx.add(key, key)
		for _, alias := range aliases {
			idx.add(alias, key)
		}
	}
	for _, o := range overrides {
		if o.CanonicalKey == "" || o.Alias == "" {
			continue
		}
		idx.add(o.Alias, o.CanonicalKey)
	}

	return idx
}

func (idx *AliasIndex) add(alias, key string) {
	norm := Normalize(alias)
	if norm == "" {
		return
	}
	idx.byNorm[norm] = key
	idx.bySquish[strings.ReplaceAll(norm, " ", "")] = key
}

// Match looks a label up by normalized form first, then by squished form.
// Empty or whitespace-only input never matches.
func (idx *AliasIndex) Match(text string) (string, bool) {
	norm := Normalize(text)
	if norm == "" {
		return "", false
	}
	if key, ok := idx.byNorm[norm]; ok {
		return key, true
	}
	if key, ok := idx.bySquish[strings.ReplaceAll(norm, " ", "")]; ok {
		return key, true
	}
	return "", false
}

// labelCandidates returns a field's label texts in matching priority order.
// Priority is fixed: primary prompt, question text, label, aria name,
// placeholder, describedby, field id, name, raw id, then container prompts.
// A lower-scored candidate earlier in this order out-ranks a higher-scored
// later one; canonical intent beats raw prompt quality.
func labelCandidates(fd *FieldDescriptor) []string {
	out := make([]string, 0, 10+len(fd.ContainerPrompts))
	if len(fd.PromptCandidates) > 0 {
		out = append(out, fd.PromptCandidates[0].Text)
	}
	out = append(out,
		fd.QuestionText,
		fd.Label,
		fd.AriaName,
		fd.Placeholder,
		fd.DescribedBy,
		fd.FieldID,
		fd.Name,
		fd.RawID,
	)
	out = append(out, fd.ContainerPrompts...)
	return out
}

// MatchField canonicalizes a field: the first candidate text that matches any
// alias wins. Returns the canonical key and the label text that matched.
func (idx *AliasIndex) MatchField(fd *FieldDescriptor) (key, matchedLabel string, ok bool) {
	for _, cand := range labelCandidates(fd) {
		if cand == "" {
			continue
		}
		if k, hit := idx.Match(cand); hit {
			return k, cand, true
		}
	}
	return "", "", false
}
