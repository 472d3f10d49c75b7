package runtime

import (
	"nfinite/contract"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Peer is a registered, connected client as seen by the hub.
type Peer struct {
	Username  string
	SessionID string
	Sender    contract.Sender
}

type Registry struct {
	mu    sync.RWMutex
	peers map[string]Peer // map username -> latest connection
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]Peer)}
}

// Subscribe registers the connection of a user. A user connecting twice keeps
// only the latest connection; the previous one stops receiving parts and requests.
func (r *Registry) Subscribe(peer Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[peer.Username] = peer
}

// Unsubscribe removes a user only if the given session is still the registered one,
// so a stale connection closing late never evicts a newer one.
func (r *Registry) Unsubscribe(username, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if peer, ok := r.peers[username]; ok && peer.SessionID == sessionID {
		delete(r.peers, username)
	}
}

func (r *Registry) Get(username string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	peer, ok := r.peers[username]
	return peer, ok
}

// Others returns every connected peer except the given user, sorted by username.
func (r *Registry) Others(except string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	others := lo.Filter(lo.Values(r.peers), func(p Peer, _ int) bool {
		return p.Username != except
	})
	sort.Slice(others, func(i, j int) bool {
		return others[i].Username < others[j].Username
	})
	return others
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
