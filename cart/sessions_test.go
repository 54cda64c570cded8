package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_ConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(NewMemoryStorage())
	sid := uuid.NewString()

	const taps = 20
	var wg sync.WaitGroup
	errs := make(chan error, taps)
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// tiap request membuka Store sendiri, seperti handler HTTP
			store, err := sessions.Open(ctx, sid)
			if err != nil {
				errs <- err
				return
			}
			if _, err := store.AddItem(ctx, margherita); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	store, err := sessions.Open(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, taps, store.TotalItems())
}

func TestStore_MutationSeesWritesFromOtherStores(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(NewMemoryStorage())
	sid := uuid.NewString()

	first, err := sessions.Open(ctx, sid)
	require.NoError(t, err)
	second, err := sessions.Open(ctx, sid)
	require.NoError(t, err)

	_, err = first.AddItem(ctx, margherita)
	require.NoError(t, err)
	_, err = second.AddItem(ctx, lassi)
	require.NoError(t, err)

	var ids []string
	for _, it := range second.Items() {
		ids = append(ids, it.MenuItem.ID)
	}
	assert.ElementsMatch(t, []string{margherita.ID, lassi.ID}, ids)
	assert.Equal(t, 2, second.TotalItems())
}
