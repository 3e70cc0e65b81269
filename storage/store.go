package storage

import (
	"context"
	"errors"

	"voxstory/inventory"
)

var (
	ErrNotFound = errors.New("not found")
)

// RecordingStore is the durable home of recordings and their clone
// associations. Durability and per-owner consistency are the store's
// problem; the decision core only reads snapshots and issues targeted
// mutations.
type RecordingStore interface {
	// ListRecordings returns every recording the owner has, locked or not.
	ListRecordings(ctx context.Context, ownerID string) ([]inventory.Recording, error)
	// AddRecording persists a newly-uploaded sample.
	AddRecording(ctx context.Context, rec inventory.Recording) error
	// LockRecordings flips the named recordings to locked. Already-locked
	// ids are left alone; unknown ids are an error.
	LockRecordings(ctx context.Context, ids []string) error
	// SaveVoiceClone associates (owner, item) with an external voice id.
	SaveVoiceClone(ctx context.Context, ownerID, itemName, voiceID string) error
	// VoiceClone looks up the voice id for (owner, item). ErrNotFound
	// when no clone covers the item.
	VoiceClone(ctx context.Context, ownerID, itemName string) (string, error)
}
