package handler

import (
	"github.com/gofiber/fiber/v2"

	"podapi/internal/http/middleware"
	"podapi/internal/model"
	"podapi/internal/service"
)

type notificationRequest struct {
	Text       string  `json:"text" validate:"required"`
	RelatedURL *string `json:"related_url"`
}

// ListNotifications godoc
// @Summary Notifications of the caller, timestamps in their timezone
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Notification
// @Router /notifications/ [get]
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		items, err := svc.List(c.UserContext(), user)
		if err != nil {
			return writeServiceError(c, err)
		}
		if items == nil {
			items = []model.Notification{}
		}
		return c.JSON(items)
	}
}

// CreateNotification godoc
// @Summary Create a notification for the caller
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Notification
// @Router /notifications/ [post]
func CreateNotification(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var req notificationRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		n, err := svc.Create(c.UserContext(), user, req.Text, req.RelatedURL)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(n)
	}
}
