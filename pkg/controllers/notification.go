package controllers

import (
	"net/http"
	"strings"

	"agrimarket-api-io/api/internal/helpers"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/services"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type NotificationController struct {
	notificationService services.NotificationService
}

func InitNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetUnreadCount handles GET /notification/count
func (nc *NotificationController) GetUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		count, err := nc.notificationService.Count(ctx, actor.UserID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", gin.H{"unreadCount": count})
	}
}

// GetNotifications handles GET /notification?types=a,b&category=&priority=&isRead=
func (nc *NotificationController) GetNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		filters, err := parseNotificationFilters(c)
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		isRead, ok := queryBool(c, "isRead")
		if !ok {
			return
		}
		filters.IsRead = isRead

		paginationArgs := helpers.GetPaginationArgs(c)
		notifications, count, err := nc.notificationService.List(ctx, actor.UserID, filters, paginationArgs)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		HandlePaginationAndResponse(c, notifications, count, paginationArgs, "success")
	}
}

func parseNotificationFilters(c *gin.Context) (models.NotificationFilters, error) {
	var filters models.NotificationFilters

	if raw := c.Query("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			nt := models.NotificationType(strings.TrimSpace(part))
			if !nt.IsValid() {
				return filters, errors.Errorf("unknown notification type %q", nt)
			}
			filters.Types = append(filters.Types, nt)
		}
	}

	switch category := models.NotificationCategory(c.Query("category")); category {
	case "":
	case models.CategoryApplication, models.CategoryOrder, models.CategoryPayment, models.CategorySystem:
		filters.Category = category
	default:
		return filters, errors.Errorf("unknown category %q", category)
	}

	if priority := models.NotificationPriority(c.Query("priority")); priority != "" {
		if !priority.IsValid() {
			return filters, errors.Errorf("unknown priority %q", priority)
		}
		filters.Priority = priority
	}

	return filters, nil
}

// CreateNotification handles POST /notification
func (nc *NotificationController) CreateNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		var req models.UserNotificationRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		notification, err := nc.notificationService.Create(ctx, actor, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Notification created", notification)
	}
}

// MarkAsRead handles PATCH /notification/:id/read
func (nc *NotificationController) MarkAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}

		if err := nc.notificationService.MarkRead(ctx, actor.UserID, id); err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Notification marked as read", nil)
	}
}

// MarkAllAsRead handles PATCH /notification/mark-all-read
func (nc *NotificationController) MarkAllAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		updated, err := nc.notificationService.MarkAllRead(ctx, actor.UserID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": updated})
	}
}

// DeleteNotification handles DELETE /notification/:id
func (nc *NotificationController) DeleteNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}

		if err := nc.notificationService.Delete(ctx, actor.UserID, id); err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Notification deleted", nil)
	}
}
