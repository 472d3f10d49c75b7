package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"nfinite/domain/protocol"
	"nfinite/infrastructure/storage"
	"nfinite/infrastructure/transport"
	"nfinite/runtime"
	"nfinite/services"
	"nfinite/sink"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type HubSuite struct {
	suite.Suite
	log      *slog.Logger
	db       *badger.DB
	registry *runtime.Registry
	srv      *httptest.Server
	cancel   context.CancelFunc
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	var err error
	s.log = logs.GetLoggerFromLevel(slog.LevelDebug)
	s.db, err = badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.registry = runtime.NewRegistry()
	hub := services.NewHubService(
		s.log,
		services.NewAuthService(s.log, storage.NewUserRepository(s.db)),
		storage.NewFileRepository(s.db, s.log),
		storage.NewBadgerFragmentStore(s.db, s.log),
		s.registry,
		2*time.Second,
	)
	hubServer := NewHubServer(ctx, s.log, hub, "", "/websockets", transport.DefaultOptions())
	s.srv = httptest.NewServer(hubServer.Handler())
}

func (s *HubSuite) TearDownTest() {
	s.cancel()
	s.srv.Close()
	_ = s.db.Close()
}

func (s *HubSuite) step(name string) {
	s.T().Log(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("  ====== %s ======", name)))
}

// peer connects a client, registers it and waits for its first file list.
func (s *HubSuite) peer(name string) (*services.PeerService, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/websockets"
	conn, err := transport.Dial(ctx, url, transport.DefaultOptions(), s.log, nil)
	s.Require().NoError(err)

	dir := s.T().TempDir()
	files, err := sink.NewDiskSink(dir, s.log)
	s.Require().NoError(err)

	peer := services.NewPeerService(s.log, conn, storage.NewMemoryFragmentStore(), nil, files,
		runtime.Credentials{Name: name, Pass: name + "-pw"})
	go func() { _ = peer.Run(context.Background()) }()
	s.T().Cleanup(func() { _ = peer.Close() })

	s.Require().NoError(peer.Register())
	_, err = peer.AwaitCatalog(ctx)
	s.Require().NoError(err)
	return peer, dir
}

func (s *HubSuite) TestUploadThenDownloadThroughAnotherPeer() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	content := []byte("peer-as-storage keeps my bytes on somebody else's disk")

	s.step("alice and bob connect")
	alice, aliceDir := s.peer("alice")
	_, _ = s.peer("bob")
	s.Require().Eventually(func() bool { return s.registry.Count() == 2 }, time.Second, 10*time.Millisecond)

	s.step("alice uploads, the hub shards to bob")
	s.Require().NoError(alice.Upload("notes.txt", "1700000000000", content))
	entries, err := alice.AwaitCatalog(ctx, "notes.txt")
	s.Require().NoError(err)
	s.Equal([]protocol.FileMeta{{Name: "notes.txt", DateModified: "1700000000000"}}, entries)

	s.step("alice downloads, the hub fetches the part back from bob")
	data, err := alice.Download(ctx, "notes.txt")
	s.Require().NoError(err)
	s.Equal(content, data)

	onDisk, err := os.ReadFile(filepath.Join(aliceDir, "notes.txt"))
	s.Require().NoError(err)
	s.Equal(content, onDisk)
}

func (s *HubSuite) TestUploadAloneIsKeptOnHub() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.step("carol is alone on the hub")
	carol, _ := s.peer("carol")

	s.Require().NoError(carol.Upload("solo.bin", "1", []byte{1, 2, 3, 4}))
	_, err := carol.AwaitCatalog(ctx, "solo.bin")
	s.Require().NoError(err)

	data, err := carol.Download(ctx, "solo.bin")
	s.Require().NoError(err)
	s.Equal([]byte{1, 2, 3, 4}, data)
}

func (s *HubSuite) TestCatalogSurvivesReconnection() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.step("dave uploads then leaves")
	dave, _ := s.peer("dave")
	s.Require().NoError(dave.Upload("a.txt", "1", []byte("a")))
	_, err := dave.AwaitCatalog(ctx, "a.txt")
	s.Require().NoError(err)
	s.Require().NoError(dave.Close())
	s.Require().Eventually(func() bool { return s.registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	s.step("dave comes back and gets his file list on registration")
	again, _ := s.peer("dave")
	s.True(lo.ContainsBy(again.Catalog(), func(f protocol.FileMeta) bool {
		return f.Name == "a.txt"
	}))
}
