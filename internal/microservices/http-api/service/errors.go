package service

import (
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/apperr"
)

// Messages shared with clients.
const (
	MsgIdentityTaken   = "Username or email is already registered."
	MsgCodeInvalid     = "Confirmation code is already used or incorrect. Please request a new one."
	MsgDuplicateReview = "You can have only one review per title."
	MsgMailUndelivered = "Confirmation code could not be delivered, retry signup."
)

// notFoundOr maps a missing row to NotFound and anything else to Internal.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
