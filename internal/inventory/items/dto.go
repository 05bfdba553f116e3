package items

import "time"

type CreateItemRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Category    string `json:"category" form:"category" binding:"required"`
	Quantity    *int   `json:"quantity" form:"quantity" binding:"required"`
	Location    string `json:"location" form:"location"`
	Description string `json:"description" form:"description"`
	IsAvailable *bool  `json:"is_available,omitempty" form:"is_available"` // 未指定なら true
}

// 部分更新。nil のフィールドは変更しない
type UpdateItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

type ItemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"is_available"`
	AddedBy     string    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Total int64          `json:"total"`
}

func toResponse(it *Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Quantity:    it.Quantity,
		Location:    it.Location,
		Description: it.Description,
		IsAvailable: it.IsAvailable,
		AddedBy:     it.AddedBy,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
