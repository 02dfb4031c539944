package plan

type CreatePlanRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Price       float64  `json:"price" binding:"min=0"`
	Currency    Currency `json:"currency" binding:"required,oneof=INR USD"`
	Duration    Duration `json:"duration" binding:"required,oneof=month year lifetime"`
	IsPopular   bool     `json:"is_popular"`
	SortOrder   int      `json:"sort_order"`
}

type UpdatePlanRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=255"`
	Description *string   `json:"description"`
	Features    []string  `json:"features"`
	Price       *float64  `json:"price" binding:"omitempty,min=0"`
	Currency    *Currency `json:"currency" binding:"omitempty,oneof=INR USD"`
	Duration    *Duration `json:"duration" binding:"omitempty,oneof=month year lifetime"`
	IsPopular   *bool     `json:"is_popular"`
	SortOrder   *int      `json:"sort_order"`
}

type PlanListFilters struct {
	IsActive *bool  `form:"is_active"`
	Currency string `form:"currency"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type PlanListResponse struct {
	Plans      []Plan `json:"plans"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}
