package handlers

import (
	"strconv"

	"membership-portal/internal/core/domain"
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/pagination"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member administration endpoints
type MemberHandler struct {
	memberService  *services.MemberService
	paymentService *services.PaymentService
	cardService    *services.CardService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService, paymentService *services.PaymentService, cardService *services.CardService) *MemberHandler {
	return &MemberHandler{
		memberService:  memberService,
		paymentService: paymentService,
		cardService:    cardService,
	}
}

// ApprovalRequest represents a registration decision
type ApprovalRequest struct {
	Approved bool `json:"approved"`
}

// StatusRequest represents a direct status change
type StatusRequest struct {
	Status domain.MemberStatus `json:"status"`
}

// ListMembers lists members inside the admin's mandalam scope
// @Summary List members
// @Tags Admin Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Name, email, phone, reg no or Emirates ID"
// @Param status query string false "pending, approved, rejected or renewal_pending"
// @Param mandalam query string false "Narrow to one mandalam"
// @Param paid query bool false "Payment status"
// @Success 200 {object} response.Response{data=[]models.MemberResponse}
// @Failure 403 {object} response.Response
// @Router /admin/members [get]
func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	q := services.MemberQuery{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Mandalam: c.Query("mandalam"),
		Offset:   params.Offset,
		Limit:    params.Limit,
	}
	if raw := c.Query("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "paid must be true or false")
		}
		q.Paid = &paid
	}

	members, total, err := h.memberService.List(c.Context(), actorID, q)
	if err != nil {
		return respondError(c, err, "Failed to list members")
	}
	return response.Paginated(c, "Members retrieved successfully", members, params, total)
}

// GetMember returns one member
// @Summary Get member by ID
// @Tags Admin Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id} [get]
func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.Get(c.Context(), actorID, id)
	if err != nil {
		return respondError(c, err, "Failed to get member")
	}
	return response.Success(c, "Member retrieved successfully", member)
}

// UpdateMember edits member fields directly
// @Summary Update member
// @Description Admin edit of profile fields and registration answers, bypassing change requests
// @Tags Admin Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.AdminUpdateInput true "Fields to overwrite"
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id} [put]
func (h *MemberHandler) UpdateMember(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.AdminUpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.AdminUpdate(c.Context(), actorID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update member")
	}
	return response.Success(c, "Member updated successfully", member)
}

// SetApproval approves or rejects a registration
// @Summary Approve or reject member
// @Tags Admin Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body ApprovalRequest true "Decision"
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/approval [put]
func (h *MemberHandler) SetApproval(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.SetApprovalStatus(c.Context(), actorID, id, req.Approved)
	if err != nil {
		return respondError(c, err, "Failed to update approval")
	}
	return response.Success(c, "Member status updated", member)
}

// SetStatus sets any member status
// @Summary Set member status
// @Tags Admin Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/status [put]
func (h *MemberHandler) SetStatus(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.SetStatus(c.Context(), actorID, id, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update status")
	}
	return response.Success(c, "Member status updated", member)
}

// AssignRole sets a member's role
// @Summary Assign role
// @Description Master admin only. mandalam_access is required for mandalam_admin; custom_permissions for custom_admin.
// @Tags Admin Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.RoleAssignment true "Role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/members/{id}/role [put]
func (h *MemberHandler) AssignRole(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.RoleAssignment
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.memberService.AssignRole(c.Context(), actorID, id, req); err != nil {
		return respondError(c, err, "Failed to assign role")
	}
	return response.Success(c, "Role assigned successfully", nil)
}

// ListAdmins lists members holding an admin role
// @Summary List admins
// @Tags Admin Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]services.AdminView}
// @Failure 403 {object} response.Response
// @Router /admin/admins [get]
func (h *MemberHandler) ListAdmins(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	admins, err := h.memberService.ListAdmins(c.Context(), actorID)
	if err != nil {
		return respondError(c, err, "Failed to list admins")
	}
	return response.Success(c, "Admins retrieved successfully", admins)
}

// ResolvePayment approves or declines a member's pending payment
// @Summary Review payment
// @Tags Admin Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.ResolvePaymentInput true "Decision"
// @Success 200 {object} response.Response{data=models.MemberResponse}
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/members/{id}/payment [put]
func (h *MemberHandler) ResolvePayment(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req services.ResolvePaymentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.paymentService.ResolvePayment(c.Context(), actorID, id, req.Approved, req.AdminRemarks)
	if err != nil {
		return respondError(c, err, "Failed to review payment")
	}
	return response.Success(c, "Payment reviewed", member)
}

// PendingPayments lists members with a payment awaiting review
// @Summary List pending payments
// @Tags Admin Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param mandalam query string false "Narrow to one mandalam"
// @Success 200 {object} response.Response{data=[]models.MemberResponse}
// @Failure 403 {object} response.Response
// @Router /admin/payments/pending [get]
func (h *MemberHandler) PendingPayments(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	members, total, err := h.paymentService.ListPending(c.Context(), actorID, c.Query("mandalam"), params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err, "Failed to list pending payments")
	}
	return response.Paginated(c, "Pending payments retrieved successfully", members, params, total)
}

// MemberCard returns card data for a member
// @Summary Get member card data
// @Tags Admin Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response{data=services.CardData}
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/members/{id}/card [get]
func (h *MemberHandler) MemberCard(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	data, err := h.cardService.CardData(c.Context(), actorID, id)
	if err != nil {
		return respondError(c, err, "Failed to load card")
	}
	return response.Success(c, "Card data retrieved successfully", data)
}
