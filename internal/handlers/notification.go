package handlers

import (
	"net/http"

	"myblog/internal/db"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/utils"

	"github.com/gin-gonic/gin"
)

const notificationPageSize = 50

// NotificationHandler serves the comment and reply notices that the
// CommentPosted receiver writes for post owners and replied-to users.
type NotificationHandler struct {
	app *App
}

func NewNotificationHandler(app *App) *NotificationHandler {
	return &NotificationHandler{app: app}
}

// List returns the newest notices of the logged-in user with the unread
// count. ?unread=1 restricts the list to unread notices.
func (h *NotificationHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	q := db.DB.WithContext(c.Request.Context()).Where("user_id = ?", user.ID)
	if c.Query("unread") == "1" {
		q = q.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(notificationPageSize).Find(&notifications).Error; err != nil {
		h.app.Log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to load notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	var unread int64
	db.DB.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
}

// Read marks one notice as read and answers with it, so the client can
// follow its comment link. Notices of other users are reported as missing.
func (h *NotificationHandler) Read(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	id, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	var notification models.Notification
	result := db.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, user.ID).
		Limit(1).Find(&notification)
	if result.Error != nil {
		h.app.Log.Error().Err(result.Error).Uint("notification_id", id).Msg("Failed to load notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if !notification.IsRead {
		if err := db.DB.Model(&notification).Update("is_read", true).Error; err != nil {
			h.app.Log.Error().Err(err).Uint("notification_id", id).Msg("Failed to mark notification read")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		notification.IsRead = true
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// ReadAll marks every unread notice of the user as read.
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	result := db.DB.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		h.app.Log.Error().Err(result.Error).Uint("user_id", user.ID).Msg("Failed to mark notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
}
