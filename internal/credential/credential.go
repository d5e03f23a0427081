// Package credential holds the admin key used for the backend's /admin/
// endpoints. Holders are passed explicitly to the API client, which reads
// the key on every request and clears it when the backend rejects it.
package credential

import (
	"context"
	"sync"
)

// Holder stores a single admin credential.
type Holder interface {
	Credential(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, key string) error
	ClearCredential(ctx context.Context) error
}

// MemoryHolder keeps the credential for the lifetime of the process.
type MemoryHolder struct {
	mu  sync.RWMutex
	key string
}

func NewMemoryHolder(key string) *MemoryHolder {
	return &MemoryHolder{key: key}
}

func (h *MemoryHolder) Credential(ctx context.Context) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key, nil
}

func (h *MemoryHolder) SetCredential(ctx context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.key = key
	return nil
}

func (h *MemoryHolder) ClearCredential(ctx context.Context) error {
	return h.SetCredential(ctx, "")
}
