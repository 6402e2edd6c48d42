package impl

import (
	"sync"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/pkg/errors"
)

// MemoryStore keeps snapshots in a mutex-guarded dict for { sessionId -> session }.
// Values are cloned on the way in and out.
type MemoryStore struct {
	sync.Mutex
	dict map[string]checkout.Session
}

func (r *MemoryStore) Load(id string) (checkout.Session, error) {
	r.Lock()
	s, ok := r.dict[id]
	r.Unlock()
	if !ok {
		return checkout.Session{}, errors.Wrapf(session.ErrSessionNotFound, "id %s", id)
	}
	return s.Clone(), nil
}

func (r *MemoryStore) Save(s checkout.Session) error {
	if s.ID == "" {
		return errors.New("session id required")
	}
	r.Lock()
	r.dict[s.ID] = s.Clone()
	r.Unlock()
	return nil
}

func (r *MemoryStore) Delete(id string) error {
	r.Lock()
	delete(r.dict, id)
	r.Unlock()
	return nil
}

func (r *MemoryStore) Size() int {
	r.Lock()
	defer r.Unlock()
	return len(r.dict)
}
