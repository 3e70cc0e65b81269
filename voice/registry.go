package voice

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"voxstory/storage"
)

// Registry answers "which external voice speaks this owner's item"
// at narration time. Lookups hit the store once and are cached with a
// TTL; newly-created clones are pushed in directly so their first
// narration doesn't wait out a miss.
type Registry struct {
	store storage.RecordingStore
	cache *ttlcache.Cache[string, string]
}

const registryTTL = 5 * time.Minute

func NewRegistry(store storage.RecordingStore) *Registry {
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](registryTTL),
	)
	go cache.Start()

	return &Registry{
		store: store,
		cache: cache,
	}
}

// VoiceFor returns the voice id covering (owner, item).
// storage.ErrNotFound when no clone covers the item yet.
func (r *Registry) VoiceFor(ctx context.Context, ownerID, itemName string) (string, error) {
	key := ownerID + "/" + itemName

	if item := r.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	voiceID, err := r.store.VoiceClone(ctx, ownerID, itemName)
	if err != nil {
		return "", err
	}

	r.cache.Set(key, voiceID, ttlcache.DefaultTTL)
	return voiceID, nil
}

// Register persists a fresh clone association and primes the cache.
func (r *Registry) Register(ctx context.Context, ownerID, itemName, voiceID string) error {
	if err := r.store.SaveVoiceClone(ctx, ownerID, itemName, voiceID); err != nil {
		return err
	}
	r.cache.Set(ownerID+"/"+itemName, voiceID, ttlcache.DefaultTTL)
	return nil
}

// Stop shuts down the cache's expiry loop.
func (r *Registry) Stop() {
	r.cache.Stop()
}
