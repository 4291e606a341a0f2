// Package document renders merged message bodies to PDF attachments and
// archives them to object storage.
//
// Renderer converts HTML to plain text with a strict bluemonday policy,
// keeping paragraph and line breaks, and lays it out with fpdf:
//
//	r := document.NewRenderer(document.WithPageSize("Letter"))
//	att, err := r.Render(ctx, "<p>Hello</p>", "invoice-42.pdf")
//
// Archiver writes rendered attachments under a folder prefix in any
// storage.Storage:
//
//	a := document.NewArchiver(store)
//	err = a.Archive(ctx, "invoices/2026-10", att)
package document
