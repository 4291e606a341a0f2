package merge

import "strings"

// Substitute replaces every <<Header>> marker in tmpl with the row's value for
// that header. Markers that do not match a header are left as they are.
func Substitute(tmpl string, row []Value, headers []string) string {
	if tmpl == "" || !strings.Contains(tmpl, "<<") {
		return tmpl
	}
	out := tmpl
	for i, h := range headers {
		out = strings.ReplaceAll(out, "<<"+h+">>", cell(row, i).String())
	}
	return out
}

// AttachmentFilename renders the attachment filename for a row.
// An empty template yields DefaultAttachmentName.
func AttachmentFilename(tmpl string, row []Value, headers []string) string {
	if strings.TrimSpace(tmpl) == "" {
		return DefaultAttachmentName
	}
	return Substitute(tmpl, row, headers) + AttachmentExtension
}
