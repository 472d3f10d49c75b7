package internal

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/nfinite")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.Equal("0.0.0.0:8080", config.Addr)
	req.Equal("/websockets", config.WebsocketPath)
	req.Equal(10*time.Second, config.FetchTimeout)
	req.Equal(1024, config.ReadBufferSize)
	req.NoError(config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	req := require.New(t)
	valid := Config{WebsocketPath: "/ws", FetchTimeout: time.Second, HeartbeatInterval: time.Second}
	req.NoError(valid.Validate())

	badPath := valid
	badPath.WebsocketPath = "ws"
	req.Error(badPath.Validate())

	clash := valid
	clash.InspectPath = "/ws"
	req.Error(clash.Validate())

	noTimeout := valid
	noTimeout.FetchTimeout = 0
	req.Error(noTimeout.Validate())
}

func TestInspectHandler(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	req.NoError(err)
	defer db.Close()

	req.NoError(db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte("user:alice"), []byte(`{"username":"alice","passwordHash":"$argon2id$secret"}`)); err != nil {
			return err
		}
		if err := txn.Set([]byte("file:alice:a.txt"), []byte(`{"owner":"alice","name":"a.txt"}`)); err != nil {
			return err
		}
		return txn.Set([]byte("fragment:abc"), []byte{0xff, 0x00})
	}))
	handler := InspectHandler(db, nil, "file:")

	get := func(target string) (int, string) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
		body, err := io.ReadAll(rec.Body)
		req.NoError(err)
		return rec.Code, string(body)
	}

	// Default prefix lists the file catalog only
	code, body := get("/inspect")
	req.Equal(http.StatusOK, code)
	req.Contains(body, "file:alice:a.txt")
	req.Contains(body, `"name":"a.txt"`)
	req.NotContains(body, "fragment:abc")

	// Fragments are shown by size, not content
	code, body = get("/inspect?prefix=fragment:")
	req.Equal(http.StatusOK, code)
	req.Contains(body, "fragment:abc")

	// Users are never served, whatever the prefix spelling
	for _, prefix := range []string{"user:", "user:alice", "u", ""} {
		code, body = get("/inspect?prefix=" + url.QueryEscape(prefix))
		if prefix == "" {
			req.Equal(http.StatusOK, code)
		} else {
			req.Equal(http.StatusForbidden, code, prefix)
		}
		req.NotContains(body, "argon2id", prefix)
	}
}
