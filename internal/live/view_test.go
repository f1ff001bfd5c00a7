package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pub_pos_backend/internal/store"
)

type item struct {
	ID   string
	Name string
}

func decodeItem(doc store.Document) item {
	name, _ := doc.Data["name"].(string)
	return item{ID: doc.ID, Name: name}
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

type blockingSubscriber struct{}

func (blockingSubscriber) Subscribe(context.Context, string, *store.OrderBy) (*store.Subscription, error) {
	return nil, errors.New("permission denied")
}

func TestView_StartsEmptyAndLoading(t *testing.T) {
	v := newView[item]("menu")
	assert.True(t, v.Loading())
	assert.Empty(t, v.Items())
	assert.NoError(t, v.Err())
}

func TestView_DeliversFullOrderedSnapshots(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	_, _ = s.Create(ctx, "menu", map[string]any{"name": "Mojito"})
	_, _ = s.Create(ctx, "menu", map[string]any{"name": "Bloody Mary"})

	v := Watch(ctx, s, "menu", &store.OrderBy{Field: "name"}, decodeItem)
	defer v.Close()

	require.NoError(t, v.Wait(ctx))
	assert.False(t, v.Loading())
	assert.Equal(t, []string{"Bloody Mary", "Mojito"}, names(v.Items()))

	_, _ = s.Create(ctx, "menu", map[string]any{"name": "Heineken"})
	assert.Eventually(t, func() bool {
		return len(v.Items()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Bloody Mary", "Heineken", "Mojito"}, names(v.Items()))
}

func TestView_SequenceNeverGoesBackwards(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	v := Watch(ctx, s, "orders", nil, decodeItem)
	defer v.Close()
	require.NoError(t, v.Wait(ctx))

	stop := make(chan struct{})
	go func() {
		defer close(stop)
		for i := 0; i < 100; i++ {
			_, _ = s.Create(ctx, "orders", map[string]any{"name": "o"})
		}
	}()

	var last uint64
	for {
		select {
		case <-stop:
			assert.Eventually(t, func() bool { return len(v.Items()) == 100 }, time.Second, 5*time.Millisecond)
			return
		case <-v.Changes():
			st := v.State()
			assert.GreaterOrEqual(t, st.Seq, last)
			last = st.Seq
		}
	}
}

func TestView_CloseStopsDeliveries(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	v := Watch(ctx, s, "menu", nil, decodeItem)
	require.NoError(t, v.Wait(ctx))

	v.Close()
	_, _ = s.Create(ctx, "menu", map[string]any{"name": "Sprite"})
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, v.Items())
	for range v.Changes() {
	}
	v.Close()
}

func TestView_EstablishFailureIsTerminalError(t *testing.T) {
	v := Watch[item](context.Background(), blockingSubscriber{}, "staff", nil, decodeItem)
	defer v.Close()

	err := v.Wait(context.Background())
	assert.EqualError(t, err, "permission denied")
	assert.False(t, v.Loading())
	assert.Empty(t, v.Items())
}

func TestView_SubscriptionFailureDoesNotAffectOtherViews(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	staff := Watch(ctx, s, "staff", nil, decodeItem)
	menu := Watch(ctx, s, "menu", nil, decodeItem)
	defer staff.Close()
	defer menu.Close()
	require.NoError(t, staff.Wait(ctx))
	require.NoError(t, menu.Wait(ctx))

	denied := errors.New("missing or insufficient permissions")
	s.Interrupt("staff", denied)

	assert.Eventually(t, func() bool { return staff.Err() != nil }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, staff.Err(), denied)

	_, _ = s.Create(ctx, "menu", map[string]any{"name": "Fanta"})
	assert.Eventually(t, func() bool { return len(menu.Items()) == 1 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, menu.Err())
}

func TestView_WaitHonorsContext(t *testing.T) {
	v := newView[item]("menu")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, v.Wait(ctx), context.DeadlineExceeded)
}
