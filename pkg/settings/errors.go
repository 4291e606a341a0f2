package settings

import "errors"

var (
	ErrNotFound     = errors.New("settings: not found")
	ErrEmptyName    = errors.New("settings: template name is empty")
	ErrPersistence  = errors.New("settings: persistence failed")
	ErrCorruptValue = errors.New("settings: stored value is not valid JSON")
)
