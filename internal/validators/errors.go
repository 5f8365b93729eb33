package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidUserID  = errors.New("invalid user ID")
	ErrInvalidDocID   = errors.New("invalid document ID")
	ErrInvalidVersion = errors.New("invalid version")
	ErrEmptyPassword  = errors.New("password is required")
)
