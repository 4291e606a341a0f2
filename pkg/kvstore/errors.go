package kvstore

import "errors"

var (
	ErrNotFound           = errors.New("kvstore: key not found")
	ErrEmptyConnectionURL = errors.New("kvstore: empty connection URL")
	ErrFailedToParseURL   = errors.New("kvstore: failed to parse connection URL")
	ErrConnectionFailed   = errors.New("kvstore: failed to establish connection")
	ErrHealthcheckFailed  = errors.New("kvstore: healthcheck failed")
)
