package credential

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	clientBucket = "client"
	adminKey     = "admin_key"
)

// BoltHolder persists the credential in a bbolt file so it survives restarts,
// the way a browser keeps it in local storage.
type BoltHolder struct {
	db *bolt.DB
}

// OpenBoltHolder opens (creating if needed) the credential file at path.
func OpenBoltHolder(path string) (*BoltHolder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(clientBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create credential bucket: %w", err)
	}

	return &BoltHolder{db: db}, nil
}

func (h *BoltHolder) Close() error {
	return h.db.Close()
}

func (h *BoltHolder) Credential(ctx context.Context) (string, error) {
	var key string
	err := h.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(clientBucket)).Get([]byte(adminKey)); v != nil {
			key = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return key, nil
}

func (h *BoltHolder) SetCredential(ctx context.Context, key string) error {
	err := h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(clientBucket))
		if key == "" {
			return b.Delete([]byte(adminKey))
		}
		return b.Put([]byte(adminKey), []byte(key))
	})
	if err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

func (h *BoltHolder) ClearCredential(ctx context.Context) error {
	return h.SetCredential(ctx, "")
}
