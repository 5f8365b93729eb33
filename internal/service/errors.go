package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")
	ErrWrongRecoveryKey    = errors.New("wrong recovery key")
	ErrNotEnrolled         = errors.New("user is not enrolled")
	ErrAlreadyEnrolled     = errors.New("user is already enrolled")
)
