package resumes

import "time"

// ResumeResponse is the outward-facing representation of a résumé.
type ResumeResponse struct {
	ID          string     `json:"id"`
	DeveloperID string     `json:"developerId"`
	JobID       *string    `json:"jobId"`
	Title       string     `json:"title"`
	Skills      string     `json:"skills"`
	ResumeURL   string     `json:"resumeUrl"`
	PDFURL      *string    `json:"pdfUrl"`
	Developer   *developer `json:"developer,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type developer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type generateRequest struct {
	JobDescription string `json:"jobDescription" binding:"required,notblank"`
	DeveloperID    string `json:"developerId" binding:"required,uuid"`
	DocType        string `json:"docType" binding:"omitempty,doctype"`
	JobID          string `json:"jobId" binding:"omitempty,uuid"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:          r.ID,
		DeveloperID: r.DeveloperID,
		JobID:       optional(r.JobID),
		Title:       r.Title,
		Skills:      r.Skills,
		ResumeURL:   r.ResumeURL,
		PDFURL:      optional(r.PDFURL),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toListedResponse(l Listed) ResumeResponse {
	resp := toResponse(l.Resume)
	resp.Developer = &developer{ID: l.DeveloperID, Name: l.DeveloperName}
	return resp
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
