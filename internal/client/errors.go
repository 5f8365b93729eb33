package client

import "errors"

var (
	ErrUsage            = errors.New("usage error")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrNoTerminal       = errors.New("no terminal to read the password from")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoUser           = errors.New("user id is required (-u or ZKVAULT_USER)")
)
