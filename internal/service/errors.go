package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrInvalidInviteCode    = errors.New("invalid or expired invite code")
	ErrInternalServer       = errors.New("internal server error")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidEdit          = errors.New("invalid edit data")
	ErrInvalidProject       = errors.New("project cannot be exported")
	ErrForbidden            = errors.New("operation not permitted")
	ErrVersionConflict      = errors.New("version conflict detected")
)
