//go:generate go run go.uber.org/mock/mockgen -source=file_repository.go -destination=../../mocks/mock_file_repository.go -package=mocks
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	apperrors "nfinite/errors"
	"net/url"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// HubStorer is the storer name of parts kept by the hub itself.
const HubStorer = "@hub"

// FileRecord is what the hub knows about an uploaded file. The bytes themselves
// only live in the parts.
type FileRecord struct {
	Owner        string    `json:"owner"`
	Name         string    `json:"name"`
	DateModified string    `json:"dateModified"`
	Size         int       `json:"size"`
	MimeType     string    `json:"mimeType"`
	PartCount    int       `json:"partCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PartRecord locates one shard of a file. Storers are the usernames holding a copy.
type PartRecord struct {
	Owner   string   `json:"owner"`
	File    string   `json:"file"`
	Name    string   `json:"name"`
	Index   int      `json:"index"`
	Size    int      `json:"size"`
	Storers []string `json:"storers"`
}

type IFileRepository interface {
	InsertFile(file FileRecord) error
	GetFile(owner, name string) (FileRecord, error)
	FilesOf(owner string) ([]FileRecord, error)
	AddPart(part PartRecord) error
	PartsOf(owner, name string) ([]PartRecord, error)
	DeleteFile(owner, name string) error
}

type FileRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewFileRepository(db *badger.DB, log *slog.Logger) *FileRepository {
	return &FileRepository{db: db, log: log}
}

// Key components are query-escaped so a ':' inside a username or file name
// can never leak into another owner's prefix.
func fileKey(owner, name string) []byte {
	return []byte(fmt.Sprintf("file:%s:%s", url.QueryEscape(owner), url.QueryEscape(name)))
}

func filePrefix(owner string) []byte {
	return []byte(fmt.Sprintf("file:%s:", url.QueryEscape(owner)))
}

// The index is padded to 6 digits so parts iterate in shard order.
func partKey(owner, name string, index int) []byte {
	return []byte(fmt.Sprintf("part:%s:%s:%06d", url.QueryEscape(owner), url.QueryEscape(name), index))
}

func partPrefix(owner, name string) []byte {
	return []byte(fmt.Sprintf("part:%s:%s:", url.QueryEscape(owner), url.QueryEscape(name)))
}

// InsertFile records a new file for its owner. A second upload under the same
// name fails with ErrFileAlreadyExists; there is no versioning.
func (f FileRepository) InsertFile(file FileRecord) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal file record: %w", err)
	}
	return f.db.Update(func(txn *badger.Txn) error {
		key := fileKey(file.Owner, file.Name)
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %s", apperrors.ErrFileAlreadyExists, file.Name)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		f.log.Debug("File recorded", "owner", file.Owner, "name", file.Name, "size", file.Size)
		return nil
	})
}

func (f FileRepository) GetFile(owner, name string) (FileRecord, error) {
	var file FileRecord
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fileKey(owner, name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &file)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return FileRecord{}, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, name)
	}
	if err != nil {
		return FileRecord{}, err
	}
	return file, nil
}

// FilesOf lists every file of an owner, ordered by escaped name.
func (f FileRepository) FilesOf(owner string) ([]FileRecord, error) {
	var files []FileRecord
	err := f.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, filePrefix(owner), func(val []byte) error {
			var file FileRecord
			if err := json.Unmarshal(val, &file); err != nil {
				return fmt.Errorf("failed to unmarshal file record: %w", err)
			}
			files = append(files, file)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error during file scan: %w", err)
	}
	return files, nil
}

// AddPart stores a part location. Adding the same index twice merges the storers.
func (f FileRepository) AddPart(part PartRecord) error {
	return f.db.Update(func(txn *badger.Txn) error {
		key := partKey(part.Owner, part.File, part.Index)
		item, err := txn.Get(key)
		switch {
		case err == nil:
			var existing PartRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return err
			}
			part.Storers = lo.Union(existing.Storers, part.Storers)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		data, err := json.Marshal(part)
		if err != nil {
			return fmt.Errorf("marshal part record: %w", err)
		}
		return txn.Set(key, data)
	})
}

// PartsOf returns the parts of a file in shard order.
func (f FileRepository) PartsOf(owner, name string) ([]PartRecord, error) {
	var parts []PartRecord
	err := f.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, partPrefix(owner, name), func(val []byte) error {
			var part PartRecord
			if err := json.Unmarshal(val, &part); err != nil {
				return fmt.Errorf("failed to unmarshal part record: %w", err)
			}
			parts = append(parts, part)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error during part scan: %w", err)
	}
	return parts, nil
}

// DeleteFile removes a file record and every part record of it in one transaction.
// Deleting a file that does not exist is not an error.
func (f FileRepository) DeleteFile(owner, name string) error {
	return f.db.Update(func(txn *badger.Txn) error {
		prefix := partPrefix(owner, name)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range append(keys, fileKey(owner, name)) {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		f.log.Debug("File deleted", "owner", owner, "name", name, "parts", len(keys))
		return nil
	})
}

func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
