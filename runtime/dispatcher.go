package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"nfinite/contract"
	"nfinite/domain"
	"nfinite/domain/protocol"
	"nfinite/errors"
	"nfinite/infrastructure/storage"

	"github.com/samber/lo"
)

// Credentials are sent as-is whenever the hub asks for them.
type Credentials struct {
	Name string
	Pass string
}

// ClientDispatcher routes reassembled units on the client side of a connection.
// It is driven by a single receive loop, so handlers never run concurrently.
type ClientDispatcher struct {
	log         *slog.Logger
	sender      contract.Sender
	store       storage.IFragmentStore
	catalog     *domain.Catalog
	presenter   contract.Presenter
	files       contract.FileSink
	credentials Credentials
}

func NewClientDispatcher(
	log *slog.Logger,
	sender contract.Sender,
	store storage.IFragmentStore,
	catalog *domain.Catalog,
	presenter contract.Presenter,
	files contract.FileSink,
	credentials Credentials,
) *ClientDispatcher {
	return &ClientDispatcher{
		log:         log,
		sender:      sender,
		store:       store,
		catalog:     catalog,
		presenter:   presenter,
		files:       files,
		credentials: credentials,
	}
}

func (d *ClientDispatcher) Dispatch(_ context.Context, unit protocol.Unit) error {
	msg := unit.Message
	switch msg.Type {
	case protocol.Registration:
		return d.sendCredentials()
	case protocol.FileList:
		return d.replaceCatalog(msg.Files)
	case protocol.File:
		return d.saveFile(unit)
	case protocol.Part:
		return d.storePart(unit)
	case protocol.Request:
		return d.serveRequest(unit)
	case protocol.Response:
		return d.acceptResponse(unit)
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownMessageType, msg.Type)
	}
}

// SendCredentials registers this client with the hub.
func (d *ClientDispatcher) SendCredentials() error {
	return d.sendCredentials()
}

func (d *ClientDispatcher) sendCredentials() error {
	if err := d.sender.SendControl(protocol.NewRegistration(d.credentials.Name, d.credentials.Pass)); err != nil {
		return fmt.Errorf("send registration: %w", err)
	}
	d.log.Debug("Credentials sent", "name", d.credentials.Name)
	return nil
}

func (d *ClientDispatcher) replaceCatalog(entries []protocol.FileEntry) error {
	metas := lo.Map(entries, func(e protocol.FileEntry, _ int) protocol.FileMeta {
		return e.FileMeta
	})
	d.catalog.Replace(metas)
	d.presenter.OnFileListUpdated(d.catalog.Entries())
	d.log.Debug("Catalog replaced", "files", len(metas))
	return nil
}

func (d *ClientDispatcher) saveFile(unit protocol.Unit) error {
	if err := d.files.Save(*unit.Message.FileMeta, unit.Payload); err != nil {
		return fmt.Errorf("save file %s: %w", unit.Name(), err)
	}
	return nil
}

func (d *ClientDispatcher) storePart(unit protocol.Unit) error {
	if err := d.store.Put(unit.Name(), unit.Payload); err != nil {
		return err
	}
	d.log.Debug("Holding fragment", "name", unit.Name(), "size", len(unit.Payload))
	return nil
}

// serveRequest answers a peer fragment request. An unknown name sends nothing.
func (d *ClientDispatcher) serveRequest(unit protocol.Unit) error {
	name := unit.Name()
	data, ok, err := d.store.Get(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownFragment, name)
	}
	if err := d.sender.SendPaired(protocol.NewPart(name, unit.Message.FileMeta.DateModified), data); err != nil {
		return fmt.Errorf("send part %s: %w", name, err)
	}
	d.log.Debug("Fragment served", "name", name, "size", len(data))
	return nil
}

func (d *ClientDispatcher) acceptResponse(unit protocol.Unit) error {
	meta := *unit.Message.FileMeta
	if err := d.store.Put(meta.Name, unit.Payload); err != nil {
		return err
	}
	if err := d.files.Save(meta, unit.Payload); err != nil {
		return fmt.Errorf("save response %s: %w", meta.Name, err)
	}
	return nil
}
