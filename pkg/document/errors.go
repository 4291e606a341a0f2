package document

import "errors"

var (
	ErrRenderFailed  = errors.New("document: render failed")
	ErrEmptyFilename = errors.New("document: filename is required")
	ErrArchiveFailed = errors.New("document: archive failed")
)
