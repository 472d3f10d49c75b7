package sink

import (
	"fmt"
	"log/slog"
	"nfinite/domain/protocol"
	"os"
	"path/filepath"
)

// DiskSink writes complete files into one directory, flat.
// A file is written to a temporary name then renamed, so readers never see it half written.
type DiskSink struct {
	dir string
	log *slog.Logger
}

func NewDiskSink(dir string, log *slog.Logger) (DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DiskSink{}, fmt.Errorf("create download dir %s: %w", dir, err)
	}
	return DiskSink{dir: dir, log: log}, nil
}

func (d DiskSink) Save(meta protocol.FileMeta, data []byte) error {
	path, err := d.Path(meta.Name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, ".nfinite-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", meta.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", meta.Name, err)
	}

	if modified, ok := meta.ModifiedAt(); ok {
		_ = os.Chtimes(path, modified, modified)
	}
	d.log.Info("File saved", "name", meta.Name, "path", path, "size", len(data))
	return nil
}

// Path resolves a file name inside the sink directory. Names that would escape
// it are rejected.
func (d DiskSink) Path(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(d.dir, base), nil
}
