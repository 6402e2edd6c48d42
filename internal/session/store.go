package session

import (
	"github.com/Shopify/gocheckoutflow/internal/checkout"
)

// Store persists checkout session snapshots keyed by session ID.
type Store interface {
	Load(id string) (checkout.Session, error)
	Save(s checkout.Session) error
	Delete(id string) error
}
