package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/companies"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.POST("/jobs/from-description", h.fromDescription)
	rg.POST("/jobs/from-descriptions", h.fromDescriptions)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/search", h.search)
	rg.GET("/jobs/company/:companyId", h.listByCompany)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), req.fields())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, toResponse(job))
}

func (h *Handler) update(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.fields())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(job))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(job))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponses(items))
}

func (h *Handler) listByCompany(c *gin.Context) {
	items, err := h.Svc.ListByCompany(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponses(items))
}

func (h *Handler) search(c *gin.Context) {
	items, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponses(items))
}

func (h *Handler) fromDescription(c *gin.Context) {
	var req fromDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	job, created, err := h.Svc.FromDescription(c.Request.Context(), req.JobDescription)
	if err != nil {
		writeError(c, err)
		return
	}
	if created {
		respond.Created(c, toResponse(job))
		return
	}
	respond.OK(c, toResponse(job))
}

func (h *Handler) fromDescriptions(c *gin.Context) {
	var req fromDescriptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	batch := h.Svc.FromDescriptions(c.Request.Context(), req.JobDescriptions)
	respond.OK(c, gin.H{
		"created":  toResponses(batch.Created),
		"existing": toResponses(batch.Existing),
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, companies.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "company not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, companies.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, llm.ErrMissingCredential), errors.Is(err, llm.ErrRewriteService):
		respond.Error(c, http.StatusBadGateway, "llm_unavailable", "job extraction service unavailable", nil)
	case errors.Is(err, llm.ErrNoStructuredOutput):
		respond.Error(c, http.StatusBadGateway, "invalid_llm_output", "job extraction returned no usable data", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "job request failed", nil)
	}
}
