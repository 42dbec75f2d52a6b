package handlers

import (
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the signed-in member's own data
type ProfileHandler struct {
	authService    *services.AuthService
	memberService  *services.MemberService
	paymentService *services.PaymentService
	changeService  *services.ChangeRequestService
	benefitService *services.BenefitService
	cardService    *services.CardService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	authService *services.AuthService,
	memberService *services.MemberService,
	paymentService *services.PaymentService,
	changeService *services.ChangeRequestService,
	benefitService *services.BenefitService,
	cardService *services.CardService,
) *ProfileHandler {
	return &ProfileHandler{
		authService:    authService,
		memberService:  memberService,
		paymentService: paymentService,
		changeService:  changeService,
		benefitService: benefitService,
		cardService:    cardService,
	}
}

// GetProfile returns the member's profile
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.memberService.Get(c.Context(), memberID, memberID)
	if err != nil {
		return respondError(c, err, "Failed to get profile")
	}
	return response.Success(c, "Profile retrieved successfully", member)
}

// UpdateField edits one profile field. An empty field is filled in directly;
// a filled field becomes a change request for admin review.
// @Summary Update a profile field
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Field and new value"
// @Success 200 {object} response.Response{data=services.UpdateResult}
// @Success 202 {object} response.Response{data=services.UpdateResult}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/fields [put]
func (h *ProfileHandler) UpdateField(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.changeService.UpdateProfile(c.Context(), memberID, req.Field, req.Value, req.Reason)
	if err != nil {
		return respondError(c, err, "Failed to update profile")
	}

	if !result.Applied {
		return c.Status(fiber.StatusAccepted).JSON(response.Response{
			Success: true,
			Message: "Change request submitted for review",
			Data:    result,
		})
	}
	return response.Success(c, "Profile updated successfully", result)
}

// ChangeRequests lists the member's change requests
// @Summary List my change requests
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.ChangeRequest}
// @Router /profile/change-requests [get]
func (h *ProfileHandler) ChangeRequests(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.changeService.ListMine(c.Context(), memberID)
	if err != nil {
		return respondError(c, err, "Failed to list change requests")
	}
	return response.Success(c, "Change requests retrieved successfully", list)
}

// Fee returns the fee the member owes for the active year
// @Summary Get my membership fee
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.FeeQuote}
// @Failure 409 {object} response.Response
// @Router /profile/fee [get]
func (h *ProfileHandler) Fee(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	quote, err := h.paymentService.FeeFor(c.Context(), memberID)
	if err != nil {
		return respondError(c, err, "Failed to compute fee")
	}
	return response.Success(c, "Fee retrieved successfully", quote)
}

// SubmitPayment records the member's payment for review
// @Summary Submit membership payment
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitPaymentInput true "Payment details"
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/payment [post]
func (h *ProfileHandler) SubmitPayment(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.SubmitPaymentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.paymentService.SubmitPayment(c.Context(), memberID, req.Amount, req.Remarks, req.RecipientID)
	if err != nil {
		return respondError(c, err, "Failed to submit payment")
	}
	return response.Success(c, "Payment submitted for review", member)
}

// Benefits returns the member's benefit ledger with totals
// @Summary List my benefits
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile/benefits [get]
func (h *ProfileHandler) Benefits(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.benefitService.ListForMember(c.Context(), memberID, memberID)
	if err != nil {
		return respondError(c, err, "Failed to list benefits")
	}
	summary, err := h.benefitService.Summary(c.Context(), memberID, memberID)
	if err != nil {
		return respondError(c, err, "Failed to summarize benefits")
	}

	return response.Success(c, "Benefits retrieved successfully", fiber.Map{
		"benefits": list,
		"summary":  summary,
	})
}

// Card returns the data for the member's membership card
// @Summary Get my membership card data
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.CardData}
// @Failure 409 {object} response.Response
// @Router /profile/card [get]
func (h *ProfileHandler) Card(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.cardService.CardData(c.Context(), memberID, memberID)
	if err != nil {
		return respondError(c, err, "Failed to load card")
	}
	return response.Success(c, "Card data retrieved successfully", data)
}

// ChangePassword replaces the member's password
// @Summary Change my password
// @Description Other sessions are signed out
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/password [put]
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	memberID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.authService.ChangePassword(c.Context(), memberID, &req); err != nil {
		return respondError(c, err, "Failed to change password")
	}
	return response.Success(c, "Password changed successfully", nil)
}
