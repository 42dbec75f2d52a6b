package handlers

import (
	"errors"
	"strconv"

	"membership-portal/internal/adapters/http/middleware"
	"membership-portal/internal/core/domain"
	"membership-portal/internal/core/services"
	"membership-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var notFoundErrors = []error{
	services.ErrMemberNotFound,
	services.ErrRequestNotFound,
	services.ErrBenefitNotFound,
	services.ErrTemplateNotFound,
	services.ErrNotificationNotFound,
	services.ErrCardTemplateNotFound,
	services.ErrQuestionNotFound,
	services.ErrRecipientNotFound,
	services.ErrYearNotFound,
}

var conflictErrors = []error{
	services.ErrYearExists,
	services.ErrPaymentAlreadySubmitted,
	services.ErrNoPendingPayment,
	services.ErrRequestNotPending,
	services.ErrPhoneTaken,
	services.ErrNoActiveYear,
	services.ErrMemberNotApproved,
	services.ErrCardNotAvailable,
	services.ErrRenewalInProgress,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service and domain errors onto the response envelope.
// Anything unknown is logged and answered with fallback as a 500.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var ve *services.ValidationError
	var ae *domain.AnswerError

	switch {
	case errors.As(err, &ve):
		return response.ValidationFailed(c, "Validation failed", ve.Fields)
	case errors.As(err, &ae):
		return response.ValidationFailed(c, ae.Error(), map[string]string{ae.Key: ae.Err.Error()})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrOutOfScope):
		return response.Forbidden(c, "You don't have permission to perform this action")
	case errors.Is(err, services.ErrAlreadyExists):
		return response.Conflict(c, "Account already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid login or password")
	case errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrTokenRevoked),
		errors.Is(err, services.ErrInvalidToken):
		return response.Unauthorized(c, err.Error())
	case isAny(err, notFoundErrors):
		return response.NotFound(c, err.Error())
	case isAny(err, conflictErrors):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidEmiratesID),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrMandalamAccessMissing),
		errors.Is(err, domain.ErrRoleScopeMismatch),
		errors.Is(err, services.ErrCannotChangeOwnRole),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrValueRequired),
		errors.Is(err, services.ErrValueUnchanged),
		errors.Is(err, services.ErrRemarksRequired),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidBenefitType),
		errors.Is(err, services.ErrInvalidYear),
		errors.Is(err, services.ErrSubjectRequired),
		errors.Is(err, services.ErrInvalidPaymentFilter),
		errors.Is(err, services.ErrCardTemplateInvalid),
		errors.Is(err, services.ErrQuestionInvalid),
		errors.Is(err, services.ErrRecipientInvalid),
		errors.Is(err, services.ErrOldPasswordWrong),
		errors.Is(err, services.ErrWeakPassword):
		return response.BadRequest(c, err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.Locals("requestid"),
	}).WithError(err).Error(fallback)
	return response.InternalServerError(c, fallback)
}

// currentMember returns the member id set by AuthMiddleware
func currentMember(c *fiber.Ctx) (uint, bool) {
	return middleware.MemberID(c)
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
