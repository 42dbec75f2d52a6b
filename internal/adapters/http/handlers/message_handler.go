package handlers

import (
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/pagination"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles admin messaging and the member inbox
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send fans a templated message out to the filtered members
// @Summary Send message
// @Description Placeholders {{name}}, {{mandalam}}, {{year}}, {{regNo}}, {{phone}} and {{emirate}} are filled per recipient
// @Tags Admin Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SendMessageInput true "Message and recipient filter"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.SendMessageInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sent, err := h.messageService.SendMessage(c.Context(), actorID, req.Filter, req.Subject, req.Body)
	if err != nil {
		return respondError(c, err, "Failed to send message")
	}
	return response.Success(c, "Message sent", fiber.Map{"recipients": sent})
}

// ListTemplates lists message templates
// @Summary List message templates
// @Tags Admin Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.MessageTemplate}
// @Router /admin/message-templates [get]
func (h *MessageHandler) ListTemplates(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.messageService.ListTemplates(c.Context(), actorID)
	if err != nil {
		return respondError(c, err, "Failed to list templates")
	}
	return response.Success(c, "Templates retrieved successfully", list)
}

// CreateTemplate creates a message template
// @Summary Create message template
// @Tags Admin Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.TemplateInput true "Template"
// @Success 201 {object} response.Response{data=models.MessageTemplate}
// @Failure 400 {object} response.Response
// @Router /admin/message-templates [post]
func (h *MessageHandler) CreateTemplate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.TemplateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, err := h.messageService.CreateTemplate(c.Context(), actorID, req)
	if err != nil {
		return respondError(c, err, "Failed to create template")
	}
	return response.Created(c, "Template created", t)
}

// UpdateTemplate updates a message template
// @Summary Update message template
// @Tags Admin Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param body body services.TemplateInput true "Template"
// @Success 200 {object} response.Response{data=models.MessageTemplate}
// @Failure 404 {object} response.Response
// @Router /admin/message-templates/{id} [put]
func (h *MessageHandler) UpdateTemplate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid template ID")
	}

	var req services.TemplateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, err := h.messageService.UpdateTemplate(c.Context(), actorID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update template")
	}
	return response.Success(c, "Template updated", t)
}

// DeleteTemplate deletes a message template
// @Summary Delete message template
// @Tags Admin Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/message-templates/{id} [delete]
func (h *MessageHandler) DeleteTemplate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid template ID")
	}

	if err := h.messageService.DeleteTemplate(c.Context(), actorID, id); err != nil {
		return respondError(c, err, "Failed to delete template")
	}
	return response.Success(c, "Template deleted", nil)
}

// Inbox lists the member's notifications
// @Summary List my notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=[]models.Notification}
// @Router /notifications [get]
func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	list, total, err := h.messageService.Inbox(c.Context(), memberID, params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err, "Failed to list notifications")
	}
	return response.Paginated(c, "Notifications retrieved successfully", list, params, total)
}

// UnreadCount counts the member's unread notifications
// @Summary Count unread notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	n, err := h.messageService.UnreadCount(c.Context(), memberID)
	if err != nil {
		return respondError(c, err, "Failed to count notifications")
	}
	return response.Success(c, "Unread count retrieved", fiber.Map{"unread": n})
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [put]
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.messageService.MarkRead(c.Context(), memberID, id); err != nil {
		return respondError(c, err, "Failed to mark notification")
	}
	return response.Success(c, "Notification marked as read", nil)
}

// MarkAllRead marks every notification as read
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [put]
func (h *MessageHandler) MarkAllRead(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	n, err := h.messageService.MarkAllRead(c.Context(), memberID)
	if err != nil {
		return respondError(c, err, "Failed to mark notifications")
	}
	return response.Success(c, "Notifications marked as read", fiber.Map{"updated": n})
}
