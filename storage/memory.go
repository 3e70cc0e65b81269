package storage

import (
	"context"
	"fmt"
	"sync"

	"voxstory/inventory"
)

// Memory is the in-process RecordingStore. It backs tests and single
// node deployments; swap in a database-backed store for anything else.
type Memory struct {
	mutex      sync.RWMutex
	recordings map[string][]inventory.Recording // ownerID -> recordings
	clones     map[string]string                // ownerID/itemName -> voiceID
}

var _ RecordingStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		recordings: make(map[string][]inventory.Recording),
		clones:     make(map[string]string),
	}
}

func (m *Memory) ListRecordings(_ context.Context, ownerID string) ([]inventory.Recording, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	recs := m.recordings[ownerID]
	out := make([]inventory.Recording, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *Memory) AddRecording(_ context.Context, rec inventory.Recording) error {
	if rec.OwnerID == "" {
		return fmt.Errorf("recording has no owner")
	}
	if !rec.Category.Valid() {
		return fmt.Errorf("invalid category %q", rec.Category)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recordings[rec.OwnerID] = append(m.recordings[rec.OwnerID], rec)
	return nil
}

func (m *Memory) LockRecordings(_ context.Context, ids []string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	found := 0
	for owner, recs := range m.recordings {
		for i := range recs {
			if want[recs[i].ID] {
				recs[i].Locked = true
				found++
			}
		}
		m.recordings[owner] = recs
	}

	if found != len(want) {
		return fmt.Errorf("locked %d of %d recordings; unknown ids in request", found, len(want))
	}
	return nil
}

func (m *Memory) SaveVoiceClone(_ context.Context, ownerID, itemName, voiceID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.clones[ownerID+"/"+itemName] = voiceID
	return nil
}

func (m *Memory) VoiceClone(_ context.Context, ownerID, itemName string) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	voiceID, ok := m.clones[ownerID+"/"+itemName]
	if !ok {
		return "", ErrNotFound
	}
	return voiceID, nil
}
