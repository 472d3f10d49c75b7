package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"nfinite/contract"
	"nfinite/domain/mimetypes"
	"nfinite/domain/protocol"
	apperrors "nfinite/errors"
	"nfinite/infrastructure/storage"
	"nfinite/runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultFetchTimeout = 10 * time.Second

// HubService is the state shared by every hub connection: who is online,
// which files exist, where their parts live, and which part fetches are in flight.
type HubService struct {
	log          *slog.Logger
	auth         IAuthService
	files        storage.IFileRepository
	fragments    storage.IFragmentStore
	registry     *runtime.Registry
	fetchTimeout time.Duration

	mu      sync.Mutex
	waiters map[string][]chan []byte // map storer/part -> fetches waiting for it
}

func NewHubService(
	log *slog.Logger,
	auth IAuthService,
	files storage.IFileRepository,
	fragments storage.IFragmentStore,
	registry *runtime.Registry,
	fetchTimeout time.Duration,
) *HubService {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &HubService{
		log:          log,
		auth:         auth,
		files:        files,
		fragments:    fragments,
		registry:     registry,
		fetchTimeout: fetchTimeout,
		waiters:      make(map[string][]chan []byte),
	}
}

// NewSession returns the dispatcher of one freshly accepted connection.
func (h *HubService) NewSession(sender contract.Sender) *HubSession {
	id := uuid.NewString()
	return &HubSession{
		hub:    h,
		id:     id,
		sender: sender,
		log:    h.log.With("session_id", id),
	}
}

// PartName is stable for a given owner, file and shard index.
func PartName(owner, file string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%s/%d", owner, file, index)))
	return hex.EncodeToString(sum[:])
}

// Shard splits data into n contiguous chunks whose sizes differ by at most one byte.
// There are never more chunks than bytes, and always at least one.
func Shard(data []byte, n int) [][]byte {
	n = lo.Clamp(n, 1, max(len(data), 1))
	chunks := make([][]byte, 0, n)
	size, extra := len(data)/n, len(data)%n
	begin := 0
	for i := 0; i < n; i++ {
		end := begin + size
		if i < extra {
			end++
		}
		chunks = append(chunks, data[begin:end])
		begin = end
	}
	return chunks
}

func (h *HubService) fileListOf(owner string) (protocol.ControlMessage, error) {
	records, err := h.files.FilesOf(owner)
	if err != nil {
		return protocol.ControlMessage{}, err
	}
	return protocol.NewFileList(lo.Map(records, func(r storage.FileRecord, _ int) protocol.FileMeta {
		return protocol.FileMeta{Name: r.Name, DateModified: r.DateModified}
	})), nil
}

// store shards an upload across the other online peers. A part no peer took
// stays on the hub.
func (h *HubService) store(log *slog.Logger, owner string, meta protocol.FileMeta, data []byte) error {
	peers := h.registry.Others(owner)
	chunks := Shard(data, len(peers))

	record := storage.FileRecord{
		Owner:        owner,
		Name:         meta.Name,
		DateModified: meta.DateModified,
		Size:         len(data),
		MimeType:     string(mimetypes.Detect(data)),
		PartCount:    len(chunks),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.files.InsertFile(record); err != nil {
		return err
	}
	if err := h.placeParts(log, owner, meta, peers, chunks); err != nil {
		// Without every part recorded the file could never be reassembled; free the name
		if rollbackErr := h.files.DeleteFile(owner, meta.Name); rollbackErr != nil {
			log.Error("Could not roll back failed upload", "name", meta.Name, "error", rollbackErr)
		}
		return err
	}
	log.Info("File stored", "name", meta.Name, "size", record.Size, "mime", record.MimeType, "parts", record.PartCount)
	return nil
}

// placeParts hands chunk i to peers[i], or keeps it on the hub when there is no
// such peer or the send failed, and records where each part went.
func (h *HubService) placeParts(log *slog.Logger, owner string, meta protocol.FileMeta, peers []runtime.Peer, chunks [][]byte) error {
	for i, chunk := range chunks {
		part := storage.PartRecord{
			Owner: owner,
			File:  meta.Name,
			Name:  PartName(owner, meta.Name, i),
			Index: i,
			Size:  len(chunk),
		}
		storer := storage.HubStorer
		if i < len(peers) {
			err := peers[i].Sender.SendPaired(protocol.NewPart(part.Name, meta.DateModified), chunk)
			if err == nil {
				storer = peers[i].Username
			} else {
				log.Warn("Peer could not take part, keeping it on the hub", "peer", peers[i].Username, "part", part.Name, "error", err)
			}
		}
		if storer == storage.HubStorer {
			if err := h.fragments.Put(part.Name, chunk); err != nil {
				return fmt.Errorf("keep part %d of %s: %w", i, meta.Name, err)
			}
		}
		part.Storers = []string{storer}
		if err := h.files.AddPart(part); err != nil {
			return err
		}
	}
	return nil
}

// reassemble fetches every part of a file in shard order.
func (h *HubService) reassemble(ctx context.Context, owner string, file storage.FileRecord) ([]byte, error) {
	parts, err := h.files.PartsOf(owner, file.Name)
	if err != nil {
		return nil, err
	}
	if len(parts) != file.PartCount {
		return nil, fmt.Errorf("%w: %s has %d of %d parts recorded", apperrors.ErrNoPeerAvailable, file.Name, len(parts), file.PartCount)
	}
	var buf bytes.Buffer
	buf.Grow(file.Size)
	for _, part := range parts {
		data, err := h.fetchPart(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("part %d of %s: %w", part.Index, file.Name, err)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// fetchPart tries each storer of the part in turn. Online peers are asked with a
// request message and given fetchTimeout to answer with the matching part.
func (h *HubService) fetchPart(ctx context.Context, part storage.PartRecord) ([]byte, error) {
	var lastErr error = apperrors.ErrNoPeerAvailable
	for _, storer := range part.Storers {
		if storer == storage.HubStorer {
			data, ok, err := h.fragments.Get(part.Name)
			if err != nil {
				lastErr = err
				continue
			}
			if ok {
				return data, nil
			}
			continue
		}

		peer, ok := h.registry.Get(storer)
		if !ok {
			continue
		}
		data, err := h.askPeer(ctx, peer, part.Name)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	if errors.Is(lastErr, apperrors.ErrNoPeerAvailable) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", apperrors.ErrNoPeerAvailable, lastErr)
}

func (h *HubService) askPeer(ctx context.Context, peer runtime.Peer, partName string) ([]byte, error) {
	key := peer.Username + "/" + partName
	ch := h.expect(key)
	defer h.forget(key, ch)

	if err := peer.Sender.SendControl(protocol.NewRequest(partName)); err != nil {
		return nil, err
	}

	timer := time.NewTimer(h.fetchTimeout)
	defer timer.Stop()
	select {
	case data := <-ch:
		return data, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s from %s", apperrors.ErrFetchTimeout, partName, peer.Username)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *HubService) expect(key string) chan []byte {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.waiters[key] = append(h.waiters[key], ch)
	return ch
}

func (h *HubService) forget(key string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	remaining := lo.Without(h.waiters[key], ch)
	if len(remaining) == 0 {
		delete(h.waiters, key)
		return
	}
	h.waiters[key] = remaining
}

// deliver hands a part sent by a peer to every fetch waiting for it.
func (h *HubService) deliver(storer, partName string, data []byte) error {
	key := storer + "/" + partName
	h.mu.Lock()
	waiting := h.waiters[key]
	delete(h.waiters, key)
	h.mu.Unlock()

	if len(waiting) == 0 {
		return fmt.Errorf("%w: %s from %s", apperrors.ErrUnsolicitedPart, partName, storer)
	}
	for _, ch := range waiting {
		ch <- data
	}
	return nil
}

// HubSession dispatches the units of one connection. Requests are served on
// their own goroutine so the receive loop keeps reading the parts they wait for.
type HubSession struct {
	hub    *HubService
	id     string
	sender contract.Sender
	log    *slog.Logger

	mu       sync.RWMutex
	username string
	serving  sync.WaitGroup
}

func (s *HubSession) ID() string {
	return s.id
}

func (s *HubSession) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *HubSession) Dispatch(ctx context.Context, unit protocol.Unit) error {
	msg := unit.Message
	if msg.Type == protocol.Registration {
		return s.register(*msg.UserMeta)
	}

	owner := s.Username()
	if owner == "" && msg.Type.Known() {
		return fmt.Errorf("%w: %s", apperrors.ErrNotRegistered, msg.Type)
	}
	switch msg.Type {
	case protocol.File:
		return s.upload(owner, *msg.FileMeta, unit.Payload)
	case protocol.Part:
		return s.hub.deliver(owner, unit.Name(), unit.Payload)
	case protocol.Request:
		return s.request(ctx, owner, unit.Name())
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownMessageType, msg.Type)
	}
}

func (s *HubSession) register(meta protocol.UserMeta) error {
	user, err := s.hub.auth.Authenticate(meta.Name, meta.Pass)
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.username
	s.username = user.Username
	s.mu.Unlock()
	if previous != "" && previous != user.Username {
		s.hub.registry.Unsubscribe(previous, s.id)
	}
	s.hub.registry.Subscribe(runtime.Peer{Username: user.Username, SessionID: s.id, Sender: s.sender})
	s.log.Info("Peer registered", "name", user.Username, "peers", s.hub.registry.Count())

	return s.sendFileList(user.Username)
}

func (s *HubSession) upload(owner string, meta protocol.FileMeta, data []byte) error {
	if err := s.hub.store(s.log, owner, meta, data); err != nil {
		return err
	}
	return s.sendFileList(owner)
}

func (s *HubSession) request(ctx context.Context, owner, name string) error {
	file, err := s.hub.files.GetFile(owner, name)
	if err != nil {
		return err
	}
	s.serving.Add(1)
	go func() {
		defer s.serving.Done()
		data, err := s.hub.reassemble(ctx, owner, file)
		if err != nil {
			s.log.Error("Could not reassemble file", "name", name, "error", err)
			return
		}
		if err := s.sender.SendPaired(protocol.NewResponse(file.Name, file.DateModified), data); err != nil {
			s.log.Warn("Could not send response", "name", name, "error", err)
			return
		}
		s.log.Info("File served", "name", name, "size", len(data))
	}()
	return nil
}

func (s *HubSession) sendFileList(owner string) error {
	list, err := s.hub.fileListOf(owner)
	if err != nil {
		return err
	}
	return s.sender.SendControl(list)
}

// Close removes the connection from the registry and waits for the requests it
// was serving; those stop on their own once the connection context is done.
func (s *HubSession) Close() {
	if owner := s.Username(); owner != "" {
		s.hub.registry.Unsubscribe(owner, s.id)
		s.log.Info("Peer left", "name", owner, "peers", s.hub.registry.Count())
	}
	s.serving.Wait()
}
