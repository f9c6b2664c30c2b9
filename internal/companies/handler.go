package companies

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// CompanyResponse is the outward-facing representation of a company.
type CompanyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type createRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=200"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/companies", h.create)
	rg.GET("/companies", h.list)
	rg.GET("/companies/:id", h.get)
	rg.PUT("/companies/:id", h.update)
	rg.DELETE("/companies/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	company, err := h.Svc.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, ToResponse(company))
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	company, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(company))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) get(c *gin.Context) {
	company, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ToResponse(company))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]CompanyResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, ToResponse(item))
	}
	respond.OK(c, resp)
}

// ToResponse converts a Company for JSON output.
func ToResponse(company Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID,
		Name:        company.Name,
		Description: company.Description,
		CreatedAt:   company.CreatedAt,
		UpdatedAt:   company.UpdatedAt,
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "company not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "company request failed", nil)
	}
}
