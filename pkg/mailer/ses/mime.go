package ses

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// lineLength is the RFC 2045 limit for base64 encoded lines.
const lineLength = 76

// buildMessage encodes email as a multipart/mixed MIME message.
// Bcc recipients are left out of the headers.
func buildMessage(from string, email *mailer.Email) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
		}
	}
	header("From", from)
	header("To", strings.Join(email.To, ", "))
	header("Cc", strings.Join(email.CC, ", "))
	header("Reply-To", email.ReplyTo)
	header("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	for k, v := range email.Headers {
		header(textproto.CanonicalMIMEHeaderKey(k), v)
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/mixed; boundary="+w.Boundary())
	buf.WriteString("\r\n")

	if err := writeBody(w, email); err != nil {
		return nil, err
	}
	for _, a := range email.Attachments {
		if err := writeAttachment(w, a); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBody(w *multipart.Writer, email *mailer.Email) error {
	ct, content := "text/html; charset=utf-8", email.HTML
	if content == "" {
		ct, content = "text/plain; charset=utf-8", email.Text
	}

	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {ct},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(w *multipart.Writer, a mailer.Attachment) error {
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	if typed := mime.FormatMediaType(ct, map[string]string{"name": a.Filename}); typed != "" {
		ct = typed
	}

	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {ct},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(a.Content)
	for len(encoded) > lineLength {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:lineLength]); err != nil {
			return err
		}
		encoded = encoded[lineLength:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}
