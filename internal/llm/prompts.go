package llm

import (
	"strings"
)

const (
	rewriteSystemPrompt = "You are a professional resume optimizer. Given the job description below, rewrite the candidate's resume to maximize ATS matching and showcase advanced technical experience."
	titleSystemPrompt   = "You are a job description analyzer. Extract the job title and key technical skills from job descriptions."
	jobInfoSystemPrompt = "You are a job posting parser. Extract structured details about the role and the hiring company."

	rewriteTemperature = 0.7
	extractTemperature = 0.3
)

func rewritePrompt(jobDescription, originalText string) Prompt {
	var b strings.Builder
	b.WriteString("--- JOB DESCRIPTION ---\n")
	b.WriteString(strings.TrimSpace(jobDescription))
	b.WriteString("\n\n--- ORIGINAL RESUME ---\n")
	b.WriteString(strings.TrimSpace(originalText))
	b.WriteString(`

--- RULES ---
- Keep the section order: Name, Title, Summary, Work Experience, Skills.
- Work out the primary industry and technical requirements of the job and put them first.
- Write in technical language and quantify results (latency, throughput, conversion, scale).
- Keep the tone professional and human; do not invent employers.
- Produce one experience group per employer in the original, most recent first. The number of groups must equal the number of jobs.
- The most recent group has 8 bullets; every other group has 5 or 6.
- Each bullet is a full sentence covering the achievement, the technology used and the project context of that period.
- When several cloud platforms apply (AWS, GCP, Azure), name only one or two of them.
- Expand ecosystem skills: a language implies its common frameworks and tooling (Java implies Spring Boot, Go implies gRPC).

Return only one JSON object with these fields:
- "title": string
- "summary": string
- "experience": array of arrays of strings, bullets only, no company names or roles
- "skills": array of strings, each formatted "Category: skill, skill, skill"
`)
	return Prompt{System: rewriteSystemPrompt, User: b.String(), Temperature: rewriteTemperature}
}

func titleSkillsPrompt(jobDescription string) Prompt {
	return Prompt{
		System: titleSystemPrompt,
		User: "--- JOB DESCRIPTION ---\n" + strings.TrimSpace(jobDescription) + `

Extract the job title and the key technical skills.
Return only a JSON object with exactly these fields:
- "title": the position (string)
- "skills": comma-separated key technical skills (string)

Example: {"title": "Senior Software Engineer", "skills": "Go, gRPC, PostgreSQL, Kubernetes"}
`,
		Temperature: extractTemperature,
	}
}

func jobInfoPrompt(jobDescription string) Prompt {
	return Prompt{
		System: jobInfoSystemPrompt,
		User: "--- JOB POSTING ---\n" + strings.TrimSpace(jobDescription) + `

Return only a JSON object with these fields (use "" when unknown):
- "title": the position
- "skills": comma-separated key technical skills
- "companyName": the hiring company
- "companyDescription": one or two sentences about the company
- "url": the posting URL if present
- "source": the job board or site the posting came from, if mentioned
`,
		Temperature: extractTemperature,
	}
}
