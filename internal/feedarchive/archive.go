// Package feedarchive keeps a write-once, brotli-compressed copy of every
// raw feed file, keyed by batch, so a disputed merge can be replayed
// against the bytes that produced it.
package feedarchive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

type Archive struct {
	Dir string
}

func New(dir string) *Archive {
	return &Archive{Dir: dir}
}

func (a *Archive) path(batchID uuid.UUID, fileName string) string {
	return filepath.Join(a.Dir, fmt.Sprintf("%s_%s.br", batchID, filepath.Base(fileName)))
}

// Has reports whether a feed with this batch id and name was archived.
func (a *Archive) Has(batchID uuid.UUID, fileName string) bool {
	_, err := os.Stat(a.path(batchID, fileName))
	return err == nil
}

// Store compresses and writes the raw feed bytes. An existing archive entry
// is never overwritten.
func (a *Archive) Store(batchID uuid.UUID, fileName string, raw io.Reader) error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("archive: mkdir: %w", err)
	}
	p := a.path(batchID, fileName)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("archive: %s already stored", p)
		}
		return fmt.Errorf("archive: create: %w", err)
	}
	defer f.Close()

	w := brotli.NewWriter(f)
	if _, err := io.Copy(w, raw); err != nil {
		return fmt.Errorf("archive: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("archive: flush: %w", err)
	}
	return nil
}

// Load decompresses an archived feed back into raw bytes.
func (a *Archive) Load(batchID uuid.UUID, fileName string) ([]byte, error) {
	f, err := os.Open(a.path(batchID, fileName))
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(brotli.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("archive: decompress: %w", err)
	}
	return raw, nil
}
