package autofill

import (
	"github.com/tidwall/gjson"
)

// Boundary decoding for loosely-typed JSON coming from the browser's script
// context and from the generative model. Malformed entries are dropped, never
// propagated inward.

// DecodeFieldDescriptors converts a raw JSON array into strict descriptors.
// Entries that are not objects or that lack any usable identity (field id,
// id, name, or a prompt) are ignored.
func DecodeFieldDescriptors(raw []byte) []FieldDescriptor {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil
	}

	out := make([]FieldDescriptor, 0, 16)
	parsed.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		fd := decodeFieldDescriptor(item)
		if fd.FieldID == "" && fd.RawID == "" && fd.Name == "" && fd.QuestionText == "" && fd.Label == "" {
			return true
		}
		out = append(out, fd)
		return true
	})
	return out
}

func decodeFieldDescriptor(item gjson.Result) FieldDescriptor {
	fd := FieldDescriptor{
		Index:        int(item.Get("index").Int()),
		FieldID:      item.Get("field_id").String(),
		Tag:          item.Get("tag").String(),
		ControlType:  item.Get("control_type").String(),
		RawID:        item.Get("id").String(),
		Name:         item.Get("name").String(),
		Placeholder:  item.Get("placeholder").String(),
		Autocomplete: item.Get("autocomplete").String(),
		Required:     item.Get("required").Bool(),
		QuestionText: item.Get("question_text").String(),
		Label:        item.Get("label").String(),
		AriaName:     item.Get("aria_name").String(),
		DescribedBy:  item.Get("described_by").String(),
		LikelyEssay:  item.Get("likely_essay").Bool(),
		FrameURL:     item.Get("frame_url").String(),
		FrameName:    item.Get("frame_name").String(),
		Constraints: Constraints{
			MaxChars: int(item.Get("constraints.max_chars").Int()),
			MinChars: int(item.Get("constraints.min_chars").Int()),
			MaxWords: int(item.Get("constraints.max_words").Int()),
			MinWords: int(item.Get("constraints.min_words").Int()),
		},
		Locators: Locators{
			Selector: item.Get("locators.selector").String(),
			Readable: item.Get("locators.readable").String(),
		},
	}

	item.Get("container_prompts").ForEach(func(_, p gjson.Result) bool {
		if s := p.String(); s != "" {
			fd.ContainerPrompts = append(fd.ContainerPrompts, s)
		}
		return true
	})
	item.Get("prompt_candidates").ForEach(func(_, c gjson.Result) bool {
		text := c.Get("text").String()
		if text == "" {
			return true
		}
		fd.PromptCandidates = append(fd.PromptCandidates, PromptCandidate{
			Source: c.Get("source").String(),
			Text:   text,
			Score:  c.Get("score").Float(),
		})
		return true
	})

	return fd
}

// DecodeFillActions converts a raw JSON array of plan items into strict
// actions. Items without an action verb or without any field identity are
// dropped.
func DecodeFillActions(items gjson.Result) []FillAction {
	if !items.IsArray() {
		return nil
	}
	out := make([]FillAction, 0, 8)
	items.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		a := FillAction{
			Field:              item.Get("field").String(),
			FieldID:            item.Get("field_id").String(),
			Label:              item.Get("label").String(),
			Selector:           item.Get("selector").String(),
			Action:             item.Get("action").String(),
			Value:              item.Get("value").String(),
			Confidence:         item.Get("confidence").Float(),
			RequiresUserReview: item.Get("requires_user_review").Bool(),
		}
		if a.Action == "" {
			return true
		}
		if a.Field == "" && a.FieldID == "" && a.Selector == "" && a.Label == "" {
			return true
		}
		out = append(out, a)
		return true
	})
	return out
}
