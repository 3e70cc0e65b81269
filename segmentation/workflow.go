package segmentation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"voxstory/inventory"
	"voxstory/storage"
	"voxstory/voice"
)

var (
	// ErrInsufficientSamples means the owner has zero unlocked
	// samples, so not even the combined tier can run.
	ErrInsufficientSamples = errors.New("no unlocked samples to clone from")
	// ErrExternalCall wraps provider failures and timeouts. No lock
	// state changed for the failed call; retry is safe.
	ErrExternalCall = errors.New("voice clone call failed")
	// ErrLockingInconsistency means a clone exists but its samples
	// could not be locked. The clone is kept; a later reconciliation
	// pass may reapply the plan idempotently.
	ErrLockingInconsistency = errors.New("failed to lock samples after successful clone")
)

// DefaultCallTimeout bounds one clone-creation provider call.
const DefaultCallTimeout = 3 * time.Minute

// ownerLocks hands out one binary semaphore per owner id so clone
// workflows for the same owner never interleave. Semaphores are ctx
// aware, unlike a bare mutex.
type ownerLocks struct {
	mutex sync.Mutex
	sems  map[string]*semaphore.Weighted
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{sems: make(map[string]*semaphore.Weighted)}
}

func (l *ownerLocks) acquire(ctx context.Context, ownerID string) (func(), error) {
	l.mutex.Lock()
	sem, ok := l.sems[ownerID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[ownerID] = sem
	}
	l.mutex.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// Workflow runs the full clone-creation path: snapshot the owner's
// samples, pick a strategy, call the provider, persist the voice and
// lock what it consumed. Serialized per owner; two concurrent runs
// for the same owner would otherwise spend the same samples twice.
type Workflow struct {
	Store       storage.RecordingStore
	Provider    voice.CloneProvider
	Registry    *voice.Registry
	Selector    *Selector
	CallTimeout time.Duration

	owners *ownerLocks
}

func NewWorkflow(store storage.RecordingStore, provider voice.CloneProvider, registry *voice.Registry) *Workflow {
	return &Workflow{
		Store:       store,
		Provider:    provider,
		Registry:    registry,
		Selector:    NewSelector(),
		CallTimeout: DefaultCallTimeout,
		owners:      newOwnerLocks(),
	}
}

// CreateClone executes one clone-creation run for an owner and
// returns the decision it acted on. Locking is applied per call,
// strictly after that call's provider success; a failed or aborted
// call leaves its samples unlocked.
func (w *Workflow) CreateClone(ctx context.Context, ownerID string) (*Decision, error) {
	release, err := w.owners.acquire(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("aborted waiting for owner slot; %w", err)
	}
	defer release()

	recordings, err := w.Store.ListRecordings(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings; %w", err)
	}

	decision := w.Selector.SelectStrategy(inventory.GroupByItem(recordings))
	if len(decision.Calls) == 0 {
		return &decision, ErrInsufficientSamples
	}

	logrus.WithFields(logrus.Fields{
		"owner":    ownerID,
		"strategy": decision.Strategy,
		"calls":    len(decision.Calls),
		"items":    decision.TargetItems,
	}).Infoln("running clone creation")

	for i := range decision.Calls {
		call := &decision.Calls[i]
		call.Label = cloneLabel(ownerID, call)

		if err := w.runCall(ctx, ownerID, &decision, *call); err != nil {
			return &decision, err
		}
	}

	return &decision, nil
}

func (w *Workflow) runCall(ctx context.Context, ownerID string, decision *Decision, call ProviderCall) error {
	callCtx, cancel := context.WithTimeout(ctx, w.CallTimeout)
	defer cancel()

	voiceID, err := w.Provider.CreateClone(callCtx, call.Label, call.AudioRefs)
	if err != nil {
		// nothing locked for this call; safe to retry the whole run
		return fmt.Errorf("%w; %s", ErrExternalCall, err)
	}

	for _, item := range call.Items {
		if err := w.Registry.Register(ctx, ownerID, item, voiceID); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"owner": ownerID,
				"item":  item,
				"voice": voiceID,
			}).Errorln("failed to save voice clone association")
		}
	}

	if err := ApplyLocking(ctx, w.Store, ownerID, decision.callPlan(call)); err != nil {
		// the clone exists and stays; report, don't roll back
		logrus.WithError(err).WithFields(logrus.Fields{
			"owner": ownerID,
			"voice": voiceID,
		}).Errorln("locking inconsistency after successful clone")
		return fmt.Errorf("%w; %s", ErrLockingInconsistency, err)
	}

	return nil
}

func cloneLabel(ownerID string, call *ProviderCall) string {
	name := string(call.Type)
	if call.Type == CallItem && len(call.Items) == 1 {
		name = call.Items[0]
	}
	return fmt.Sprintf("%s-%s-%s", ownerID, name, uuid.NewString()[:8])
}
