package merge

import (
	"fmt"
	"slices"
	"strings"
)

// Fields holds the per-row message fields.
type Fields struct {
	To      string
	CC      string
	BCC     string
	Subject string
}

// ResolveFields reads recipient, cc, bcc and subject from a row.
//
// A configured column that exists in the header yields the trimmed cell text.
// cc, bcc and subject fall back to their configured defaults when the mapping
// is empty, ColumnNone, or names a column that is not in the header.
// A recipient column that is not in the header is an error.
func ResolveFields(row []Value, headers []string, cfg Config) (Fields, error) {
	toIdx := slices.Index(headers, cfg.ToColumn)
	if toIdx < 0 {
		return Fields{}, fmt.Errorf("%w: %q", ErrRecipientColumnMissing, cfg.ToColumn)
	}

	return Fields{
		To:      strings.TrimSpace(cell(row, toIdx).String()),
		CC:      lookup(row, headers, cfg.CCColumn, cfg.DefaultCC),
		BCC:     lookup(row, headers, cfg.BCCColumn, cfg.DefaultBCC),
		Subject: lookup(row, headers, cfg.SubjectColumn, cfg.DefaultSubject),
	}, nil
}

func lookup(row []Value, headers []string, column, fallback string) string {
	if !columnSet(column) {
		return fallback
	}
	idx := slices.Index(headers, column)
	if idx < 0 {
		return fallback
	}
	return strings.TrimSpace(cell(row, idx).String())
}
