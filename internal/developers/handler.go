package developers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/shared/storage/object"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches developer routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/developers", h.create)
	rg.GET("/developers", h.list)
	rg.GET("/developers/:id", h.get)
	rg.PUT("/developers/:id", h.update)
}

func (h *Handler) create(c *gin.Context) {
	h.limitBody(c)
	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	file, ok := h.readResume(c)
	if !ok {
		return
	}

	dev, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), Input{
		Name:        &req.Name,
		Link:        req.Link,
		Information: req.Information,
		File:        file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("developerId", dev.ID)
	respond.Created(c, toResponse(dev))
}

func (h *Handler) update(c *gin.Context) {
	h.limitBody(c)
	var req updateRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{"reason": err.Error()})
		return
	}
	file, ok := h.readResume(c)
	if !ok {
		return
	}

	dev, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), Input{
		Name:        req.Name,
		Link:        req.Link,
		Information: req.Information,
		File:        file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("developerId", dev.ID)
	respond.OK(c, toResponse(dev))
}

func (h *Handler) get(c *gin.Context) {
	dev, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(dev))
}

func (h *Handler) list(c *gin.Context) {
	devs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]DeveloperResponse, 0, len(devs))
	for _, dev := range devs {
		resp = append(resp, toResponse(dev))
	}
	respond.OK(c, resp)
}

func (h *Handler) maxUpload() int64 {
	if h.Svc.MaxUploadBytes > 0 {
		return h.Svc.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

// limitBody caps multipart bodies at the upload limit plus room for the text fields.
func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload()+1<<20)
}

// readResume returns the optional "resume" file. It writes the error
// response itself and reports false when the request must stop.
func (h *Handler) readResume(c *gin.Context) (*Upload, bool) {
	if c.ContentType() != "multipart/form-data" {
		return nil, true
	}
	header, err := c.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return nil, false
	}
	if header.Size > h.maxUpload() {
		respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("resume file exceeds %d bytes", h.maxUpload()), nil)
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload()+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return nil, false
	}
	return &Upload{FileName: header.Filename, Data: data}, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "developer not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, object.ErrStorage):
		respond.Error(c, http.StatusBadGateway, "storage_error", "failed to store resume file", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "developer request failed", nil)
	}
}
