package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// ContentType of rendered documents.
const ContentType = "application/pdf"

// Renderer lays out message content as a single-column PDF.
type Renderer struct {
	logger   *slog.Logger
	pageSize string
	font     string
	author   string
	fontSize float64
	margin   float64
}

// NewRenderer creates a renderer with A4 pages and 11pt Helvetica.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		logger:   logger.NewNope(),
		pageSize: "A4",
		font:     "Helvetica",
		fontSize: 11,
		margin:   20,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts HTML content to a PDF attachment named filename.
func (r *Renderer) Render(ctx context.Context, content, filename string) (*mailer.Attachment, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	pdf := fpdf.New("P", "mm", r.pageSize, "")
	pdf.SetMargins(r.margin, r.margin, r.margin)
	pdf.SetAutoPageBreak(true, r.margin)
	pdf.SetTitle(strings.TrimSuffix(filename, ".pdf"), true)
	if r.author != "" {
		pdf.SetAuthor(r.author, true)
	}
	pdf.AddPage()
	pdf.SetFont(r.font, "", r.fontSize)

	// Core fonts are cp1252; translate UTF-8 input.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineHeight := r.fontSize * 0.5

	for para := range strings.SplitSeq(PlainText(content), "\n\n") {
		pdf.MultiCell(0, lineHeight, tr(para), "", "L", false)
		pdf.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.ErrorContext(ctx, "pdf render failed",
			slog.String("filename", filename),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return &mailer.Attachment{
		Filename:    filename,
		ContentType: ContentType,
		Content:     buf.Bytes(),
	}, nil
}
