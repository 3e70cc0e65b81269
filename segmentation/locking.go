package segmentation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"voxstory/storage"
)

// ApplyLocking marks every currently-unlocked recording under the
// plan's (owner, category, item) entries as spent. Called only after
// the covering clone call succeeded. Idempotent: already-locked
// recordings are untouched, and a plan that matches nothing is a
// no-op. Recordings outside the plan are never locked.
func ApplyLocking(ctx context.Context, store storage.RecordingStore, ownerID string, plan []LockTarget) error {
	if len(plan) == 0 {
		return nil
	}

	recordings, err := store.ListRecordings(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list recordings for locking; %w", err)
	}

	planned := make(map[LockTarget]bool, len(plan))
	for _, t := range plan {
		planned[t] = true
	}

	var ids []string
	for _, r := range recordings {
		if r.Locked {
			continue
		}
		if planned[LockTarget{Category: r.Category, ItemName: r.ItemName}] {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := store.LockRecordings(ctx, ids); err != nil {
		return fmt.Errorf("failed to lock %d recordings; %w", len(ids), err)
	}

	logrus.WithFields(logrus.Fields{
		"owner":   ownerID,
		"locked":  len(ids),
		"targets": len(plan),
	}).Infoln("locked consumed samples")

	return nil
}
