package autofill

// PromptCandidate is one possible question/label text for a control, with the
// in-browser heuristic score that ranked it.
type PromptCandidate struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// Constraints holds length limits parsed from text surrounding a control.
// Zero means no constraint was found.
type Constraints struct {
	MaxChars int `json:"max_chars,omitempty"`
	MinChars int `json:"min_chars,omitempty"`
	MaxWords int `json:"max_words,omitempty"`
	MinWords int `json:"min_words,omitempty"`
}

// Locators carries the structural selector for a control plus a
// human-readable hint for logs and suggestions.
type Locators struct {
	Selector string `json:"selector"`
	Readable string `json:"readable"`
}

// FieldDescriptor describes one discovered form control. Descriptors are
// created fresh on every discovery pass and never persisted.
type FieldDescriptor struct {
	Index            int               `json:"index"`
	FieldID          string            `json:"field_id"`
	Tag              string            `json:"tag"`
	ControlType      string            `json:"control_type"`
	RawID            string            `json:"id"`
	Name             string            `json:"name"`
	Placeholder      string            `json:"placeholder"`
	Autocomplete     string            `json:"autocomplete"`
	Required         bool              `json:"required"`
	QuestionText     string            `json:"question_text"`
	Label            string            `json:"label"`
	AriaName         string            `json:"aria_name"`
	DescribedBy      string            `json:"described_by"`
	ContainerPrompts []string          `json:"container_prompts,omitempty"`
	PromptCandidates []PromptCandidate `json:"prompt_candidates,omitempty"`
	Constraints      Constraints       `json:"constraints"`
	Locators         Locators          `json:"locators"`
	LikelyEssay      bool              `json:"likely_essay"`
	FrameURL         string            `json:"frame_url,omitempty"`
	FrameName        string            `json:"frame_name,omitempty"`
}

// Fill action verbs.
const (
	ActionFill    = "fill"
	ActionSelect  = "select"
	ActionCheck   = "check"
	ActionUncheck = "uncheck"
	ActionClick   = "click"
	ActionUpload  = "upload"
	ActionSkip    = "skip"
)

// FillAction is one planned mutation of a page control.
type FillAction struct {
	Field              string  `json:"field"`
	FieldID            string  `json:"field_id,omitempty"`
	Label              string  `json:"label,omitempty"`
	Selector           string  `json:"selector,omitempty"`
	Action             string  `json:"action"`
	Value              string  `json:"value"`
	Confidence         float64 `json:"confidence"`
	RequiresUserReview bool    `json:"requires_user_review,omitempty"`
}

// FilledEntry records a value the plan decided (or managed) to apply.
type FilledEntry struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Suggestion explains why nothing was filled for a field.
type Suggestion struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Plan tier names, recorded on results and in the audit trail.
const (
	TierDeterministic = "deterministic"
	TierFallback      = "fallback"
	TierDefault       = "safe-default"
)

// FillPlanResult is the combined outcome of planning (and optionally
// executing) a fill for one page.
type FillPlanResult struct {
	Filled      []FilledEntry `json:"filled"`
	Suggestions []Suggestion  `json:"suggestions"`
	Blocked     []string      `json:"blocked"`
	Actions     []FillAction  `json:"actions"`
	Tier        string        `json:"tier,omitempty"`
}

// Empty reports whether the plan decided nothing at all.
func (r *FillPlanResult) Empty() bool {
	return len(r.Filled) == 0 && len(r.Suggestions) == 0 && len(r.Blocked) == 0
}
