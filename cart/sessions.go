package cart

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"github.com/yeremiapane/tastehub/utils"
)

// sessionStripes bounds the lock table; sessions sharing a stripe only
// wait on each other.
const sessionStripes = 64

// Sessions opens per-session cart stores on a shared Storage. Stores of
// the same session share one mutex so concurrent requests do not lose
// each other's writes.
type Sessions struct {
	storage Storage
	locks   [sessionStripes]sync.Mutex
}

func NewSessions(storage Storage) *Sessions {
	return &Sessions{storage: storage}
}

// Open hydrates the cart of one session. Session ids are client generated
// UUIDs; anything else is rejected so it cannot address foreign keys.
func (s *Sessions) Open(ctx context.Context, sessionID string) (*Store, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, utils.NewValidationError("sessionId", "session id must be a UUID")
	}
	return openLocked(ctx, s.storage, "session:"+sessionID, s.lockFor(sessionID))
}

func (s *Sessions) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionStripes]
}
