package handlers

import (
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BenefitHandler handles the benefit ledger endpoints
type BenefitHandler struct {
	benefitService *services.BenefitService
}

// NewBenefitHandler creates a new benefit handler
func NewBenefitHandler(benefitService *services.BenefitService) *BenefitHandler {
	return &BenefitHandler{benefitService: benefitService}
}

// List lists a member's benefit claims with totals per type
// @Summary List member benefits
// @Tags Admin Benefits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/benefits [get]
func (h *BenefitHandler) List(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	list, err := h.benefitService.ListForMember(c.Context(), actorID, memberID)
	if err != nil {
		return respondError(c, err, "Failed to list benefits")
	}
	summary, err := h.benefitService.Summary(c.Context(), actorID, memberID)
	if err != nil {
		return respondError(c, err, "Failed to summarize benefits")
	}

	return response.Success(c, "Benefits retrieved successfully", fiber.Map{
		"benefits": list,
		"summary":  summary,
	})
}

// Create records a benefit claim
// @Summary Add benefit
// @Tags Admin Benefits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.BenefitInput true "Benefit claim"
// @Success 201 {object} response.Response{data=models.BenefitUsage}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/benefits [post]
func (h *BenefitHandler) Create(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.BenefitInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.benefitService.Add(c.Context(), actorID, memberID, req)
	if err != nil {
		return respondError(c, err, "Failed to add benefit")
	}
	return response.Created(c, "Benefit recorded", b)
}

// Update corrects a benefit claim
// @Summary Update benefit
// @Tags Admin Benefits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param benefitId path int true "Benefit ID"
// @Param body body services.BenefitInput true "Benefit claim"
// @Success 200 {object} response.Response{data=models.BenefitUsage}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/benefits/{benefitId} [put]
func (h *BenefitHandler) Update(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}
	benefitID, ok := paramID(c, "benefitId")
	if !ok {
		return response.BadRequest(c, "Invalid benefit ID")
	}

	var req services.BenefitInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	b, err := h.benefitService.Update(c.Context(), actorID, memberID, benefitID, req)
	if err != nil {
		return respondError(c, err, "Failed to update benefit")
	}
	return response.Success(c, "Benefit updated", b)
}

// Delete removes a benefit claim
// @Summary Delete benefit
// @Tags Admin Benefits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param benefitId path int true "Benefit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/benefits/{benefitId} [delete]
func (h *BenefitHandler) Delete(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}
	benefitID, ok := paramID(c, "benefitId")
	if !ok {
		return response.BadRequest(c, "Invalid benefit ID")
	}

	if err := h.benefitService.Delete(c.Context(), actorID, memberID, benefitID); err != nil {
		return respondError(c, err, "Failed to delete benefit")
	}
	return response.Success(c, "Benefit deleted", nil)
}
