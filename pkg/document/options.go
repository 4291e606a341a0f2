package document

import "log/slog"

// Option configures a Renderer.
type Option func(*Renderer)

// WithPageSize sets the page size ("A4", "Letter", "Legal", ...).
func WithPageSize(size string) Option {
	return func(r *Renderer) {
		if size != "" {
			r.pageSize = size
		}
	}
}

// WithFont sets a core font family and size in points.
func WithFont(family string, size float64) Option {
	return func(r *Renderer) {
		if family != "" {
			r.font = family
		}
		if size > 0 {
			r.fontSize = size
		}
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(r *Renderer) {
		r.author = author
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}
