package catalog

type SubmitItemRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	URL         string   `json:"url" binding:"required,url,max=2048"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"max=100"`
	Tags        []string `json:"tags"`
}

type ModerateItemRequest struct {
	Status SubmissionStatus `json:"status" binding:"required,oneof=approved rejected"`
}

type ItemListFilters struct {
	Status   *SubmissionStatus `form:"status"`
	Category string            `form:"category"`
	Search   string            `form:"search"`
	Page     int               `form:"page"`
	PageSize int               `form:"page_size"`
}

type ItemListResponse struct {
	Items      []Item `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}
