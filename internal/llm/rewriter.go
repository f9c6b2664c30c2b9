package llm

import (
	"context"
	"strings"

	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
)

const (
	FallbackTitle  = "Unknown Position"
	FallbackSkills = "No skills specified"
)

// TitleSkills is the job title and a comma-separated skills line.
type TitleSkills struct {
	Title  string
	Skills string
}

// JobInfo is what the jobs feature extracts from a raw posting.
type JobInfo struct {
	Title              string
	Skills             string
	CompanyName        string
	CompanyDescription string
	URL                string
	Source             string
}

// Rewriter turns a job description and résumé text into structured content.
type Rewriter struct {
	completer Completer
}

// NewRewriter wraps c.
func NewRewriter(c Completer) *Rewriter {
	return &Rewriter{completer: c}
}

// Rewrite calls the model once. Empty originalText fails with ErrEmptyInput
// before any network call.
func (r *Rewriter) Rewrite(ctx context.Context, jobDescription, originalText string) (model.Content, error) {
	if strings.TrimSpace(originalText) == "" {
		return model.Content{}, ErrEmptyInput
	}
	reply, err := r.completer.Complete(ctx, rewritePrompt(jobDescription, originalText))
	if err != nil {
		return model.Content{}, err
	}
	return parseContent(reply)
}

// ExtractTitleAndSkills never fails: any error or blank field yields the fallback values.
func (r *Rewriter) ExtractTitleAndSkills(ctx context.Context, jobDescription string) TitleSkills {
	out := TitleSkills{Title: FallbackTitle, Skills: FallbackSkills}
	if r == nil || r.completer == nil {
		return out
	}
	reply, err := r.completer.Complete(ctx, titleSkillsPrompt(jobDescription))
	if err != nil {
		telemetry.Warn("llm.title_skills_fallback", map[string]any{"err": err})
		return out
	}
	obj, err := decodeObject(reply)
	if err != nil {
		telemetry.Warn("llm.title_skills_fallback", map[string]any{"err": err})
		return out
	}
	if title := looseString(obj, "title"); title != "" {
		out.Title = title
	}
	if skills := looseString(obj, "skills"); skills != "" {
		out.Skills = skills
	}
	return out
}

// ExtractJobInfo parses a raw posting. Title falls back like ExtractTitleAndSkills.
func (r *Rewriter) ExtractJobInfo(ctx context.Context, jobDescription string) (JobInfo, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return JobInfo{}, ErrEmptyInput
	}
	reply, err := r.completer.Complete(ctx, jobInfoPrompt(jobDescription))
	if err != nil {
		return JobInfo{}, err
	}
	obj, err := decodeObject(reply)
	if err != nil {
		return JobInfo{}, err
	}
	info := JobInfo{
		Title:              looseString(obj, "title"),
		Skills:             looseString(obj, "skills"),
		CompanyName:        looseString(obj, "companyName"),
		CompanyDescription: looseString(obj, "companyDescription"),
		URL:                looseString(obj, "url"),
		Source:             looseString(obj, "source"),
	}
	if info.Title == "" {
		info.Title = FallbackTitle
	}
	if info.Skills == "" {
		info.Skills = FallbackSkills
	}
	return info, nil
}
