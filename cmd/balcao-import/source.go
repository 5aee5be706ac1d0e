package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/balcao/backend/internal/bootstrap"
	"github.com/balcao/backend/internal/infrastructure/storage"
)

// dataDrop is an opened spreadsheet, local or downloaded
type dataDrop struct {
	name   string
	size   int64
	reader io.Reader
	close  func() error
}

// openSource opens a local file or downloads an s3:// object
func openSource(ctx context.Context, app *bootstrap.Container, source string) (*dataDrop, error) {
	if storage.IsURI(source) {
		loc, err := storage.ParseLocation(source)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
		store, err := app.ObjectStore(ctx)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
		data, err := store.Get(ctx, loc, app.Config.Import.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", loc, err)
		}
		return &dataDrop{
			name:   path.Base(loc.Key),
			size:   int64(len(data)),
			reader: bytes.NewReader(data),
			close:  func() error { return nil },
		}, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("failed to open source: %w", err))
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	return &dataDrop{
		name:   filepath.Base(source),
		size:   info.Size(),
		reader: f,
		close:  f.Close,
	}, nil
}
