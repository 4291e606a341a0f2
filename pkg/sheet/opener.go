package sheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

// FSOpener opens CSV datasets from a file system.
type FSOpener struct {
	fsys fs.FS
}

// NewFSOpener creates an opener reading from fsys.
func NewFSOpener(fsys fs.FS) *FSOpener {
	return &FSOpener{fsys: fsys}
}

func (o *FSOpener) Open(_ context.Context, name string) (Source, error) {
	file, err := fileName(name)
	if err != nil {
		return nil, err
	}

	f, err := o.fsys.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// Names lists the CSV datasets in the file system, sorted, in the form Open
// accepts.
func (o *FSOpener) Names(_ context.Context) ([]string, error) {
	var names []string
	err := fs.WalkDir(o.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name, ok := datasetName(p); ok && !d.IsDir() {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// StorageOpener opens CSV datasets from object storage under a key prefix.
type StorageOpener struct {
	store  storage.Storage
	prefix string
}

// NewStorageOpener creates an opener reading prefix/<name> from store.
func NewStorageOpener(store storage.Storage, prefix string) *StorageOpener {
	return &StorageOpener{store: store, prefix: strings.Trim(prefix, "/")}
}

func (o *StorageOpener) Open(ctx context.Context, name string) (Source, error) {
	file, err := fileName(name)
	if err != nil {
		return nil, err
	}

	key := o.key(file)
	rc, err := o.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ReadCSV(rc)
}

// Names lists the CSV datasets under the prefix, sorted, in the form Open
// accepts.
func (o *StorageOpener) Names(ctx context.Context) ([]string, error) {
	prefix := o.key("")
	keys, err := o.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, ok := datasetName(strings.TrimPrefix(k, prefix)); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// datasetName strips the .csv extension; ok is false for other files.
func datasetName(file string) (string, bool) {
	name, ok := strings.CutSuffix(file, ".csv")
	return name, ok && name != ""
}

func (o *StorageOpener) key(file string) string {
	if o.prefix == "" {
		return file
	}
	return o.prefix + "/" + file
}

var (
	_ Opener = (*FSOpener)(nil)
	_ Opener = (*StorageOpener)(nil)
	_ Lister = (*FSOpener)(nil)
	_ Lister = (*StorageOpener)(nil)
	_ Source = (*Table)(nil)
)
