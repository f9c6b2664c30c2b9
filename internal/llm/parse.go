package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-tailor/resume/model"
)

// jsonSpan returns the text from the first '{' to the last '}'.
func jsonSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeObject parses the JSON object embedded in a model reply.
func decodeObject(text string) (map[string]json.RawMessage, error) {
	span, ok := jsonSpan(text)
	if !ok {
		return nil, ErrNoStructuredOutput
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoStructuredOutput, err)
	}
	return obj, nil
}

// parseContent validates the rewrite reply against the résumé schema.
func parseContent(text string) (model.Content, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return model.Content{}, err
	}

	var out model.Content
	if out.Title, err = requiredString(obj, "title"); err != nil {
		return model.Content{}, err
	}
	if out.Summary, err = requiredString(obj, "summary"); err != nil {
		return model.Content{}, err
	}
	for key, dst := range map[string]*string{"name": &out.Name, "email": &out.Email, "phone": &out.Phone, "education": &out.Education} {
		if *dst, err = optionalString(obj, key); err != nil {
			return model.Content{}, err
		}
	}

	if raw, ok := obj["experience"]; ok && !isNull(raw) {
		var groups [][]string
		if err := json.Unmarshal(raw, &groups); err != nil {
			return model.Content{}, fmt.Errorf("%w: experience must be an array of string arrays", ErrInvalidStructuredOutput)
		}
		for _, g := range groups {
			out.Experience = append(out.Experience, model.ExperienceGroup{Bullets: g})
		}
	}

	if raw, ok := obj["skills"]; ok && !isNull(raw) {
		var lines []string
		if err := json.Unmarshal(raw, &lines); err != nil {
			return model.Content{}, fmt.Errorf("%w: skills must be an array of strings", ErrInvalidStructuredOutput)
		}
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			out.Skills = append(out.Skills, model.ParseSkill(line))
		}
	}

	if err := out.Validate(); err != nil {
		return model.Content{}, fmt.Errorf("%w: %v", ErrInvalidStructuredOutput, err)
	}
	return out, nil
}

func requiredString(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidStructuredOutput, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidStructuredOutput, key)
	}
	return strings.TrimSpace(s), nil
}

func optionalString(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidStructuredOutput, key)
	}
	return strings.TrimSpace(s), nil
}

// looseString accepts a string or an array of strings, joining arrays with ", ".
func looseString(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		var parts []string
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				parts = append(parts, item)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
