package developers

import "time"

// DeveloperResponse is the outward-facing representation of a developer.
type DeveloperResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Link        string    `json:"link"`
	Information string    `json:"information"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type createRequest struct {
	Name        string  `form:"name" json:"name" binding:"required,notblank,max=200"`
	Link        *string `form:"link" json:"link" binding:"omitempty,max=2048"`
	Information *string `form:"information" json:"information"`
}

type updateRequest struct {
	Name        *string `form:"name" json:"name" binding:"omitempty,notblank,max=200"`
	Link        *string `form:"link" json:"link" binding:"omitempty,max=2048"`
	Information *string `form:"information" json:"information"`
}

func toResponse(dev Developer) DeveloperResponse {
	return DeveloperResponse{
		ID:          dev.ID,
		Name:        dev.Name,
		Link:        dev.Link,
		Information: dev.Information,
		CreatedAt:   dev.CreatedAt,
		UpdatedAt:   dev.UpdatedAt,
	}
}
