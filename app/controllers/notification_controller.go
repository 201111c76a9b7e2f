package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// HandleListNotifications returns the caller's in-app notifications.
// GET /api/v1/notifications
func HandleListNotifications(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	offset, limit := pagination(c)

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	notifications, err := repo.GetByUserID(user.UserID, offset, limit)
	if err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to list notifications"))
	}
	unread, err := repo.CountUnread(user.UserID)
	if err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to count notifications"))
	}
	return c.JSON(fiber.Map{"notifications": notifications, "unread": unread})
}

// HandleMarkNotificationRead flags one of the caller's notifications as
// read. Marking someone else's notification looks like not-found.
// PATCH /api/v1/notifications/:id/read
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	affected, err := repository.GetGlobalFactory().GetNotificationRepository().MarkRead(id, user.UserID)
	if err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to mark notification"))
	}
	if affected == 0 {
		return jsonError(c, apperrors.E(apperrors.KindNotFound, "notification %d not found", id))
	}
	return c.JSON(fiber.Map{"message": "notification marked read"})
}
