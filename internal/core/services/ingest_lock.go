package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-core/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
)

// ingestLockTTL bounds how long a root path stays locked; long enough to
// cover a large tree walk, short enough that a crashed holder doesn't wedge
// ingestion of that path forever.
const ingestLockTTL = 15 * time.Minute

// lockingIngestor wraps an Ingestor with a distributed lock keyed by root
// path, so two concurrent Ingest calls against the same tree don't race
// each other's fragment writes.
type lockingIngestor struct {
	next driving.Ingestor
	lock driven.DistributedLock
}

// NewLockingIngestor wraps ingestor so that concurrent Ingest calls against
// the same rootPath are serialized. If lock is nil, ingestor is returned
// unwrapped.
func NewLockingIngestor(ingestor driving.Ingestor, lock driven.DistributedLock) driving.Ingestor {
	if lock == nil {
		return ingestor
	}
	return &lockingIngestor{next: ingestor, lock: lock}
}

func (l *lockingIngestor) Ingest(ctx context.Context, rootPath string) (int, error) {
	lockName := fmt.Sprintf("ingest:%s", rootPath)

	acquired, err := l.lock.Acquire(ctx, lockName, ingestLockTTL)
	if err != nil {
		return 0, fmt.Errorf("ingest: acquire lock: %w", err)
	}
	if !acquired {
		return 0, fmt.Errorf("ingest: path %s is already being ingested", rootPath)
	}
	defer func() {
		_ = l.lock.Release(context.Background(), lockName)
	}()

	return l.next.Ingest(ctx, rootPath)
}
