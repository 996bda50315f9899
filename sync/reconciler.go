package sync

import (
	"Wordrush/services/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Store is what reconciliation needs from the TTL store
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	SMembers(ctx context.Context, setKey string) ([]string, error)
	SAdd(ctx context.Context, setKey string, members ...string) error
	SRem(ctx context.Context, setKey string, members ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// Report counts the repairs made on one index
type Report struct {
	Index     string
	Removed   int
	Reindexed int
}

// Reconciler repairs the active-id indexes after a partial write or an
// expired record: ids without a record are dropped and records missing from
// their index are added back.
type Reconciler struct {
	store   Store
	indexes []repository.Index
}

// NewReconciler creates a new instance of the index reconciler
func NewReconciler(store Store, indexes ...repository.Index) *Reconciler {
	return &Reconciler{
		store:   store,
		indexes: indexes,
	}
}

// ReconcileAll runs every index, carrying on after a failure
func (r *Reconciler) ReconcileAll(ctx context.Context) ([]Report, error) {
	var (
		reports []Report
		errs    []error
	)
	for _, index := range r.indexes {
		report, err := r.Reconcile(ctx, index)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

func (r *Reconciler) Reconcile(ctx context.Context, index repository.Index) (Report, error) {
	report := Report{Index: index.Name()}

	ids, err := r.store.SMembers(ctx, index.ActiveKey())
	if err != nil {
		return report, fmt.Errorf("error reading index %s: %w", index.ActiveKey(), err)
	}
	indexed := make(map[string]bool, len(ids))
	for _, id := range ids {
		exists, err := r.store.Exists(ctx, index.RecordKey(id))
		if err != nil {
			return report, fmt.Errorf("error checking record %s: %w", index.RecordKey(id), err)
		}
		if exists {
			indexed[id] = true
			continue
		}
		if err := r.store.SRem(ctx, index.ActiveKey(), id); err != nil {
			return report, fmt.Errorf("error unindexing %s: %w", id, err)
		}
		report.Removed++
	}

	keys, err := r.store.ScanKeys(ctx, index.RecordPattern())
	if err != nil {
		return report, fmt.Errorf("error scanning %s: %w", index.RecordPattern(), err)
	}
	for _, key := range keys {
		id, ok := index.IDFromKey(key)
		if !ok || indexed[id] {
			continue
		}
		if err := r.store.SAdd(ctx, index.ActiveKey(), id); err != nil {
			return report, fmt.Errorf("error reindexing %s: %w", id, err)
		}
		indexed[id] = true
		report.Reindexed++
	}
	if report.Reindexed > 0 {
		if err := r.store.Expire(ctx, index.ActiveKey(), index.TTL()); err != nil {
			return report, fmt.Errorf("error refreshing index %s: %w", index.ActiveKey(), err)
		}
	}

	if report.Removed > 0 || report.Reindexed > 0 {
		log.Info().Str("index", index.ActiveKey()).Int("removed", report.Removed).Int("reindexed", report.Reindexed).
			Msg("[SYNC] Index repaired")
	}
	return report, nil
}

// Run reconciles every interval until ctx is done
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ReconcileAll(ctx); err != nil {
				log.Error().Err(err).Msg("[SYNC-ERROR] Reconciliation failed")
			}
		}
	}
}
