package handlers

import (
	"strconv"

	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// YearHandler handles membership year endpoints
type YearHandler struct {
	yearService *services.YearService
}

// NewYearHandler creates a new year handler
func NewYearHandler(yearService *services.YearService) *YearHandler {
	return &YearHandler{yearService: yearService}
}

// List lists every membership year
// @Summary List years
// @Tags Admin Years
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.YearConfig}
// @Router /admin/years [get]
func (h *YearHandler) List(c *fiber.Ctx) error {
	years, err := h.yearService.ListYears(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list years")
	}
	return response.Success(c, "Years retrieved successfully", years)
}

// Active returns the active membership year
// @Summary Get active year
// @Tags Years
// @Produce json
// @Success 200 {object} response.Response{data=models.YearConfig}
// @Failure 409 {object} response.Response
// @Router /years/active [get]
func (h *YearHandler) Active(c *fiber.Ctx) error {
	year, err := h.yearService.ActiveYear(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to get active year")
	}
	return response.Success(c, "Active year retrieved successfully", year)
}

// Create opens a new membership year and rolls members over to renewal
// @Summary Create year (rollover)
// @Description Deactivates other years, moves approved members to renewal_pending and notifies everyone. All or nothing.
// @Tags Admin Years
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateYearInput true "Year and fees"
// @Success 201 {object} response.Response{data=services.RolloverResult}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/years [post]
func (h *YearHandler) Create(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateYearInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.yearService.CreateNewYear(c.Context(), actorID, req.Year, req.RegistrationFee, req.RenewalFee)
	if err != nil {
		return respondError(c, err, "Failed to create year")
	}
	return response.Created(c, "Year created", result)
}

// Activate switches the active year
// @Summary Activate year
// @Tags Admin Years
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/years/{year}/activate [put]
func (h *YearHandler) Activate(c *fiber.Ctx) error {
	actorID, ok := currentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return response.BadRequest(c, "Invalid year")
	}

	if err := h.yearService.ActivateYear(c.Context(), actorID, year); err != nil {
		return respondError(c, err, "Failed to activate year")
	}
	return response.Success(c, "Year activated", fiber.Map{"year": year})
}
