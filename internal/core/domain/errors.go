package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrOutOfScope     = errors.New("member is outside your mandalam access")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Role errors
var (
	ErrInvalidRole           = errors.New("invalid role")
	ErrMandalamAccessMissing = errors.New("role requires mandalam access")
	ErrRoleScopeMismatch     = errors.New("mandalam access and custom permissions do not match the role")
)

// Registration errors
var (
	ErrInvalidEmiratesID = errors.New("emirates id must be exactly 15 digits")
	ErrAnswerRequired    = errors.New("answer is required")
	ErrAnswerTooShort    = errors.New("answer is too short")
	ErrAnswerTooLong     = errors.New("answer is too long")
	ErrAnswerPattern     = errors.New("answer does not match the expected format")
	ErrAnswerOption      = errors.New("answer is not one of the allowed options")
)
