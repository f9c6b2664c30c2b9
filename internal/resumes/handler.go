package resumes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// GenerateLimit guards the generation endpoint when set.
	GenerateLimit gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, generateLimit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, GenerateLimit: generateLimit}
}

// RegisterRoutes attaches résumé routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	generate := []gin.HandlerFunc{h.generate}
	if h.GenerateLimit != nil {
		generate = append([]gin.HandlerFunc{h.GenerateLimit}, generate...)
	}
	rg.POST("/resumes/generate", generate...)
	rg.POST("/resumes/:id/pdf", h.ensurePDF)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/developer/:developerId", h.listByDeveloper)
	rg.GET("/resumes/:id", h.get)
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	format, ok := ParseFormat(req.DocType)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "docType must be pdf or docx", nil)
		return
	}

	c.Set("developerId", req.DeveloperID)
	resume, err := h.Svc.GenerateResume(c.Request.Context(), GenerateRequest{
		JobDescription: req.JobDescription,
		DeveloperID:    req.DeveloperID,
		Format:         format,
		UserID:         middleware.UserIDFromContext(c),
		JobID:          req.JobID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("resumeId", resume.ID)
	c.Set("pipelineState", StateDone.String())
	respond.Created(c, toResponse(resume))
}

func (h *Handler) ensurePDF(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	if _, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	resume, err := h.Svc.EnsurePortable(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) get(c *gin.Context) {
	resume, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]ResumeResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toListedResponse(item))
	}
	respond.OK(c, resp)
}

func (h *Handler) listByDeveloper(c *gin.Context) {
	developerID := c.Param("developerId")
	c.Set("developerId", developerID)
	items, err := h.Svc.ListByDeveloper(c.Request.Context(), middleware.UserIDFromContext(c), developerID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]ResumeResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	respond.OK(c, resp)
}

func writeError(c *gin.Context, err error) {
	_, status, code := Describe(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "resume request failed"
	}
	c.Set("pipelineState", StateFailed.String())
	respond.Error(c, status, code, message, nil)
}
