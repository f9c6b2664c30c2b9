package model

import (
	"errors"
	"fmt"
	"strings"
)

// Content is the structured résumé produced by the rewriter and consumed by the renderer.
type Content struct {
	Name       string            `json:"name,omitempty"`
	Title      string            `json:"title"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Summary    string            `json:"summary"`
	Experience []ExperienceGroup `json:"experience"`
	Skills     []Skill           `json:"skills"`
	Education  string            `json:"education,omitempty"`
}

// ExperienceGroup holds the bullets for one position, most recent position first.
type ExperienceGroup struct {
	Bullets []string `json:"bullets"`
}

// Skill is one skills line. Text is the line as rendered; Category and Items
// are filled when the line has a "Category: a, b" shape.
type Skill struct {
	Category string   `json:"category,omitempty"`
	Items    []string `json:"items,omitempty"`
	Text     string   `json:"text"`
}

// ParseSkill splits "Category: a, b, c" into its parts. Lines without a
// category keep only Text.
func ParseSkill(line string) Skill {
	line = strings.TrimSpace(line)
	s := Skill{Text: line}
	head, tail, ok := strings.Cut(line, ":")
	if !ok {
		return s
	}
	head = strings.TrimSpace(head)
	if head == "" || len(head) > 60 {
		return s
	}
	s.Category = head
	for _, item := range strings.Split(tail, ",") {
		if item = strings.TrimSpace(item); item != "" {
			s.Items = append(s.Items, item)
		}
	}
	return s
}

// Validate enforces the minimum needed to render a résumé.
func (c Content) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(c.Summary) == "" {
		return errors.New("summary is required")
	}
	for i, s := range c.Skills {
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("skills[%d] is empty", i)
		}
	}
	return nil
}

// Bullets flattens experience across groups, preserving order.
func (c Content) Bullets() []string {
	var out []string
	for _, g := range c.Experience {
		for _, b := range g.Bullets {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}

// SkillLines returns each skill's rendered text.
func (c Content) SkillLines() []string {
	out := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		out = append(out, s.Text)
	}
	return out
}

// HasSkill reports whether any skill line mentions name, ignoring case.
func (c Content) HasSkill(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}
	for _, s := range c.Skills {
		if strings.Contains(strings.ToLower(s.Text), needle) {
			return true
		}
	}
	return false
}

// TemplateData is the placeholder binding used by the renderer. Scalars are
// strings; repeatable fields are []string. experience is the flattened
// bullet list so a single loop emits one paragraph per bullet.
func (c Content) TemplateData() map[string]any {
	return map[string]any{
		"name":       c.Name,
		"title":      c.Title,
		"email":      c.Email,
		"phone":      c.Phone,
		"summary":    c.Summary,
		"education":  c.Education,
		"experience": c.Bullets(),
		"skills":     strings.Join(c.SkillLines(), "\n"),
		"skillList":  c.SkillLines(),
	}
}
