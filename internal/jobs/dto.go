package jobs

import (
	"time"

	"resume-tailor/internal/companies"
)

// JobResponse is the outward-facing representation of a job.
type JobResponse struct {
	ID          string                     `json:"id"`
	CompanyID   string                     `json:"companyId"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Skills      string                     `json:"skills"`
	URL         string                     `json:"url"`
	Source      string                     `json:"source"`
	Company     *companies.CompanyResponse `json:"company,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

type jobRequest struct {
	CompanyID   *string `json:"companyId" binding:"omitempty,uuid"`
	Title       *string `json:"title" binding:"omitempty,notblank,max=300"`
	Description *string `json:"description" binding:"omitempty,notblank"`
	Skills      *string `json:"skills"`
	URL         *string `json:"url" binding:"omitempty,max=2048"`
	Source      *string `json:"source" binding:"omitempty,max=200"`
}

type fromDescriptionRequest struct {
	JobDescription string `json:"jobDescription" binding:"required,notblank"`
}

type fromDescriptionsRequest struct {
	JobDescriptions []string `json:"jobDescriptions" binding:"required,min=1,max=50,dive,notblank"`
}

func (r jobRequest) fields() Fields {
	return Fields{
		CompanyID:   r.CompanyID,
		Title:       r.Title,
		Description: r.Description,
		Skills:      r.Skills,
		URL:         r.URL,
		Source:      r.Source,
	}
}

func toResponse(j WithCompany) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		CompanyID:   j.CompanyID,
		Title:       j.Title,
		Description: j.Description,
		Skills:      j.Skills,
		URL:         j.URL,
		Source:      j.Source,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.Company.ID != "" {
		company := companies.ToResponse(j.Company)
		resp.Company = &company
	}
	return resp
}

func toResponses(items []WithCompany) []JobResponse {
	out := make([]JobResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return out
}
