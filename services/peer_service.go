package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"nfinite/contract"
	"nfinite/domain"
	"nfinite/domain/protocol"
	apperrors "nfinite/errors"
	"nfinite/infrastructure/storage"
	"nfinite/runtime"
	"nfinite/runtime/workers"
	"sync"

	"github.com/samber/lo"
)

// PeerService is the client side of a hub connection. It owns the receive loop,
// answers fragment requests from the hub, and exposes upload/download calls to the CLI.
//
// It stands between the dispatcher and the real presenter and file sink so that
// callers can wait for a download or a catalog update.
type PeerService struct {
	log        *slog.Logger
	conn       contract.Connection
	catalog    *domain.Catalog
	presenter  contract.Presenter
	files      contract.FileSink
	dispatcher *runtime.ClientDispatcher
	worker     *workers.SessionWorker

	mu             sync.Mutex
	downloads      map[string][]chan []byte
	catalogChanged chan struct{}
	listed         bool
}

func NewPeerService(
	log *slog.Logger,
	conn contract.Connection,
	store storage.IFragmentStore,
	presenter contract.Presenter,
	files contract.FileSink,
	credentials runtime.Credentials,
) *PeerService {
	s := &PeerService{
		log:            log,
		conn:           conn,
		catalog:        domain.NewCatalog(),
		presenter:      presenter,
		files:          files,
		downloads:      make(map[string][]chan []byte),
		catalogChanged: make(chan struct{}),
	}
	s.dispatcher = runtime.NewClientDispatcher(log, conn, store, s.catalog, s, s, credentials)
	s.worker = workers.NewSessionWorker(log, conn, runtime.NewSession(log), s.dispatcher)
	return s
}

// Run is the receive loop. It returns once the connection is closed.
func (s *PeerService) Run(ctx context.Context) error {
	return s.worker.Run(ctx)
}

func (s *PeerService) Register() error {
	return s.dispatcher.SendCredentials()
}

// Upload sends a file to the hub. A name already in the catalog is refused here:
// the hub would reject it without answering, leaving nothing to wait for.
func (s *PeerService) Upload(name, dateModified string, data []byte) error {
	if s.catalog.Contains(name) {
		return fmt.Errorf("upload %s: %w", name, apperrors.ErrFileAlreadyExists)
	}
	if err := s.conn.SendPaired(protocol.NewFile(name, dateModified), data); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	s.log.Info("File uploaded", "name", name, "size", len(data))
	return nil
}

// Download requests a file from the hub and waits for its response.
// The response has already been saved by the file sink when Download returns.
func (s *PeerService) Download(ctx context.Context, name string) ([]byte, error) {
	ch := s.expect(name)
	defer s.forget(name, ch)

	if err := s.conn.SendControl(protocol.NewRequest(name)); err != nil {
		return nil, fmt.Errorf("request %s: %w", name, err)
	}
	select {
	case data := <-ch:
		return data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("download %s: %w", name, ctx.Err())
	}
}

// AwaitCatalog blocks until a file list was received that names every given file,
// or ctx is done. With no names any file list will do.
func (s *PeerService) AwaitCatalog(ctx context.Context, names ...string) ([]protocol.FileMeta, error) {
	for {
		s.mu.Lock()
		changed, listed := s.catalogChanged, s.listed
		s.mu.Unlock()

		if listed && lo.EveryBy(names, s.catalog.Contains) {
			return s.catalog.Entries(), nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *PeerService) Catalog() []protocol.FileMeta {
	return s.catalog.Entries()
}

func (s *PeerService) Close() error {
	return s.conn.Close()
}

// OnFileListUpdated forwards to the presenter then wakes catalog waiters.
func (s *PeerService) OnFileListUpdated(entries []protocol.FileMeta) {
	if s.presenter != nil {
		s.presenter.OnFileListUpdated(entries)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed = true
	close(s.catalogChanged)
	s.catalogChanged = make(chan struct{})
}

func (s *PeerService) OnTransferActivity(direction domain.Direction) {
	if s.presenter != nil {
		s.presenter.OnTransferActivity(direction)
	}
}

// Save persists through the file sink, then hands the bytes to pending downloads.
func (s *PeerService) Save(meta protocol.FileMeta, data []byte) error {
	var err error
	if s.files != nil {
		err = s.files.Save(meta, data)
	}

	s.mu.Lock()
	waiting := s.downloads[meta.Name]
	delete(s.downloads, meta.Name)
	s.mu.Unlock()
	for _, ch := range waiting {
		ch <- bytes.Clone(data)
	}
	return err
}

func (s *PeerService) expect(name string) chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads[name] = append(s.downloads[name], ch)
	return ch
}

func (s *PeerService) forget(name string, ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := lo.Without(s.downloads[name], ch)
	if len(remaining) == 0 {
		delete(s.downloads, name)
		return
	}
	s.downloads[name] = remaining
}
