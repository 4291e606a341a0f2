package runlog

import "errors"

var (
	ErrAppendFailed = errors.New("runlog: failed to append outcomes")
	ErrQueryFailed  = errors.New("runlog: failed to query outcomes")
)
