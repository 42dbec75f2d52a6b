package handlers

import (
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler handles registration questions, payment recipients and
// card templates
type SettingsHandler struct {
	questionService  *services.QuestionService
	recipientService *services.RecipientService
	cardService      *services.CardService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(questionService *services.QuestionService, recipientService *services.RecipientService, cardService *services.CardService) *SettingsHandler {
	return &SettingsHandler{
		questionService:  questionService,
		recipientService: recipientService,
		cardService:      cardService,
	}
}

// ============================================================
// Registration questions
// ============================================================

// PublicQuestions lists the active registration questions
// @Summary Registration form questions
// @Tags Public
// @Produce json
// @Success 200 {object} response.Response{data=[]models.RegistrationQuestion}
// @Router /questions [get]
func (h *SettingsHandler) PublicQuestions(c *fiber.Ctx) error {
	list, err := h.questionService.ListActive(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list questions")
	}
	return response.Success(c, "Questions retrieved successfully", list)
}

// ListQuestions lists every registration question
// @Summary List all questions
// @Tags Admin Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.RegistrationQuestion}
// @Router /admin/questions [get]
func (h *SettingsHandler) ListQuestions(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.questionService.ListAll(c.Context(), actorID)
	if err != nil {
		return respondError(c, err, "Failed to list questions")
	}
	return response.Success(c, "Questions retrieved successfully", list)
}

// CreateQuestion creates a registration question
// @Summary Create question
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.QuestionInput true "Question"
// @Success 201 {object} response.Response{data=models.RegistrationQuestion}
// @Failure 400 {object} response.Response
// @Router /admin/questions [post]
func (h *SettingsHandler) CreateQuestion(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.QuestionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	q, err := h.questionService.Create(c.Context(), actorID, req)
	if err != nil {
		return respondError(c, err, "Failed to create question")
	}
	return response.Created(c, "Question created", q)
}

// UpdateQuestion updates a registration question
// @Summary Update question
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param body body services.QuestionInput true "Question"
// @Success 200 {object} response.Response{data=models.RegistrationQuestion}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/questions/{id} [put]
func (h *SettingsHandler) UpdateQuestion(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid question ID")
	}

	var req services.QuestionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	q, err := h.questionService.Update(c.Context(), actorID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update question")
	}
	return response.Success(c, "Question updated", q)
}

// DeleteQuestion deletes a registration question
// @Summary Delete question
// @Tags Admin Settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/questions/{id} [delete]
func (h *SettingsHandler) DeleteQuestion(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid question ID")
	}

	if err := h.questionService.Delete(c.Context(), actorID, id); err != nil {
		return respondError(c, err, "Failed to delete question")
	}
	return response.Success(c, "Question deleted", nil)
}

// ============================================================
// Payment recipients
// ============================================================

// PublicRecipients lists active payment recipients
// @Summary Payment recipients
// @Tags Public
// @Produce json
// @Success 200 {object} response.Response{data=[]models.PaymentRecipient}
// @Router /payment-recipients [get]
func (h *SettingsHandler) PublicRecipients(c *fiber.Ctx) error {
	list, err := h.recipientService.ListActive(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list recipients")
	}
	return response.Success(c, "Recipients retrieved successfully", list)
}

// ListRecipients lists every payment recipient
// @Summary List all recipients
// @Tags Admin Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.PaymentRecipient}
// @Router /admin/payment-recipients [get]
func (h *SettingsHandler) ListRecipients(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.recipientService.ListAll(c.Context(), actorID)
	if err != nil {
		return respondError(c, err, "Failed to list recipients")
	}
	return response.Success(c, "Recipients retrieved successfully", list)
}

// CreateRecipient creates a payment recipient
// @Summary Create recipient
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RecipientInput true "Recipient"
// @Success 201 {object} response.Response{data=models.PaymentRecipient}
// @Failure 400 {object} response.Response
// @Router /admin/payment-recipients [post]
func (h *SettingsHandler) CreateRecipient(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.RecipientInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	p, err := h.recipientService.Create(c.Context(), actorID, req)
	if err != nil {
		return respondError(c, err, "Failed to create recipient")
	}
	return response.Created(c, "Recipient created", p)
}

// UpdateRecipient updates a payment recipient
// @Summary Update recipient
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipient ID"
// @Param body body services.RecipientInput true "Recipient"
// @Success 200 {object} response.Response{data=models.PaymentRecipient}
// @Failure 404 {object} response.Response
// @Router /admin/payment-recipients/{id} [put]
func (h *SettingsHandler) UpdateRecipient(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid recipient ID")
	}

	var req services.RecipientInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	p, err := h.recipientService.Update(c.Context(), actorID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update recipient")
	}
	return response.Success(c, "Recipient updated", p)
}

// DeleteRecipient deletes a payment recipient
// @Summary Delete recipient
// @Tags Admin Settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/payment-recipients/{id} [delete]
func (h *SettingsHandler) DeleteRecipient(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid recipient ID")
	}

	if err := h.recipientService.Delete(c.Context(), actorID, id); err != nil {
		return respondError(c, err, "Failed to delete recipient")
	}
	return response.Success(c, "Recipient deleted", nil)
}

// ============================================================
// Card templates
// ============================================================

// ListCardTemplates lists card templates
// @Summary List card templates
// @Tags Admin Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.CardTemplate}
// @Router /admin/card-templates [get]
func (h *SettingsHandler) ListCardTemplates(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.cardService.ListTemplates(c.Context(), actorID)
	if err != nil {
		return respondError(c, err, "Failed to list card templates")
	}
	return response.Success(c, "Card templates retrieved successfully", list)
}

// CreateCardTemplate creates a card template
// @Summary Create card template
// @Description An active template deactivates every other template
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CardTemplateInput true "Card template"
// @Success 201 {object} response.Response{data=models.CardTemplate}
// @Failure 400 {object} response.Response
// @Router /admin/card-templates [post]
func (h *SettingsHandler) CreateCardTemplate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CardTemplateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, err := h.cardService.CreateTemplate(c.Context(), actorID, req)
	if err != nil {
		return respondError(c, err, "Failed to create card template")
	}
	return response.Created(c, "Card template created", t)
}

// UpdateCardTemplate updates a card template
// @Summary Update card template
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card template ID"
// @Param body body services.CardTemplateInput true "Card template"
// @Success 200 {object} response.Response{data=models.CardTemplate}
// @Failure 404 {object} response.Response
// @Router /admin/card-templates/{id} [put]
func (h *SettingsHandler) UpdateCardTemplate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid card template ID")
	}

	var req services.CardTemplateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, err := h.cardService.UpdateTemplate(c.Context(), actorID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update card template")
	}
	return response.Success(c, "Card template updated", t)
}

// DeleteCardTemplate deletes a card template
// @Summary Delete card template
// @Tags Admin Settings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card template ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/card-templates/{id} [delete]
func (h *SettingsHandler) DeleteCardTemplate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid card template ID")
	}

	if err := h.cardService.DeleteTemplate(c.Context(), actorID, id); err != nil {
		return respondError(c, err, "Failed to delete card template")
	}
	return response.Success(c, "Card template deleted", nil)
}
