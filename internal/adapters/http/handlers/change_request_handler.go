package handlers

import (
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/pagination"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChangeRequestHandler handles admin review of profile change requests
type ChangeRequestHandler struct {
	changeService *services.ChangeRequestService
}

// NewChangeRequestHandler creates a new change request handler
func NewChangeRequestHandler(changeService *services.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{changeService: changeService}
}

// ListPending lists pending change requests inside the admin's scope
// @Summary List pending change requests
// @Tags Admin Change Requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=[]models.ChangeRequest}
// @Failure 403 {object} response.Response
// @Router /admin/change-requests [get]
func (h *ChangeRequestHandler) ListPending(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	list, total, err := h.changeService.ListPending(c.Context(), actorID, params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err, "Failed to list change requests")
	}
	return response.Paginated(c, "Change requests retrieved successfully", list, params, total)
}

// Review approves or rejects a change request
// @Summary Review change request
// @Tags Admin Change Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Change request ID"
// @Param body body services.ReviewInput true "Decision"
// @Success 200 {object} response.Response{data=models.ChangeRequest}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/change-requests/{id}/review [put]
func (h *ChangeRequestHandler) Review(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid change request ID")
	}

	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cr, err := h.changeService.Review(c.Context(), actorID, id, req.Approved, req.Remarks)
	if err != nil {
		return respondError(c, err, "Failed to review change request")
	}
	return response.Success(c, "Change request reviewed", cr)
}
