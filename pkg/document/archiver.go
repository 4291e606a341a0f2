package document

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

// Archiver stores rendered attachments in object storage.
type Archiver struct {
	store storage.Storage
}

// NewArchiver creates an archiver writing to store.
func NewArchiver(store storage.Storage) *Archiver {
	return &Archiver{store: store}
}

// Archive writes att to folder/filename. An existing object is overwritten.
func (a *Archiver) Archive(ctx context.Context, folder string, att *mailer.Attachment) error {
	if att == nil || strings.TrimSpace(att.Filename) == "" {
		return ErrEmptyFilename
	}

	key := Key(folder, att.Filename)
	if err := a.store.Put(ctx, key, bytes.NewReader(att.Content), int64(len(att.Content)), att.ContentType); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveFailed, key, err)
	}
	return nil
}

// Key returns the object key for filename inside folder.
// The filename's directory components are dropped.
func Key(folder, filename string) string {
	folder = strings.Trim(folder, "/")
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
