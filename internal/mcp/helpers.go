package mcp

import (
	"encoding/json"
	"fmt"

	"applynerd-mcp-server/internal/autofill"
)

func getStringArg(args map[string]interface{}, key string) string {
	val, ok := args[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func getIntArg(args map[string]interface{}, key string, fallback int) int {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func getBoolArg(args map[string]interface{}, key string, fallback bool) bool {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return fallback
}

// fieldsArg decodes the optional externally supplied descriptor list. The
// same boundary decoding as live discovery applies: malformed entries are
// dropped, not propagated.
func fieldsArg(args map[string]interface{}) []autofill.FieldDescriptor {
	raw, ok := args["fields"]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return autofill.DecodeFieldDescriptors(data)
}

// jobContextArg decodes the optional job object from tool arguments.
func jobContextArg(args map[string]interface{}) *autofill.JobContext {
	raw, ok := args["job"].(map[string]interface{})
	if !ok {
		return nil
	}
	job := &autofill.JobContext{
		Company:     getStringArg(raw, "company"),
		Title:       getStringArg(raw, "title"),
		URL:         getStringArg(raw, "url"),
		Description: getStringArg(raw, "description"),
	}
	if job.Company == "" && job.Title == "" && job.URL == "" && job.Description == "" {
		return nil
	}
	return job
}
