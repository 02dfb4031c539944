package notification

type SendNotificationRequest struct {
	Title   string           `json:"title" binding:"required,max=255"`
	Content string           `json:"content" binding:"required"`
	Type    NotificationType `json:"type" binding:"omitempty,oneof=general important update announcement"`
}

type NotificationListFilters struct {
	Seen     *bool `form:"seen"`
	Page     int   `form:"page"`
	PageSize int   `form:"page_size"`
}

type NotificationListResponse struct {
	Notifications []UserNotification `json:"notifications"`
	UnreadCount   int                `json:"unread_count"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
	TotalPages    int                `json:"total_pages"`
}

type CleanupResult struct {
	DeletedNotifications int64 `json:"deleted_notifications"`
	DeletedRecipients    int64 `json:"deleted_recipients"`
}
