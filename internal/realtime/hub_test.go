package realtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	"github.com/vasiliy-maslov/foodtruck-service/internal/realtime"
)

const waitFor = time.Second

type fakeConn struct {
	mu       sync.Mutex
	messages []realtime.Message
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.messages = append(c.messages, v.(realtime.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []realtime.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.Message(nil), c.messages...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// stalledConn blocks every write until it is closed, like a peer that stopped reading.
type stalledConn struct {
	release chan struct{}
	once    sync.Once
}

func newStalledConn() *stalledConn { return &stalledConn{release: make(chan struct{})} }

func (c *stalledConn) WriteJSON(v any) error {
	<-c.release
	return errors.New("use of closed connection")
}

func (c *stalledConn) Close() error {
	c.once.Do(func() { close(c.release) })
	return nil
}

func TestHub_PublishOnlyToAccountSubscribers(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()
	accountA := uuid.Must(uuid.NewV4())
	accountB := uuid.Must(uuid.NewV4())

	connA1, connA2, connB := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Subscribe(accountA, connA1)
	hub.Subscribe(accountA, connA2)
	hub.Subscribe(accountB, connB)

	event := events.Event{Type: events.TypeOrderCreated, AccountID: accountA, OccurredAt: time.Now()}
	require.NoError(t, hub.Publish(context.Background(), event))

	require.Eventually(t, func() bool { return len(connA1.received()) == 1 && len(connA2.received()) == 1 }, waitFor, 5*time.Millisecond)
	assert.Empty(t, connB.received())
	got := connA1.received()[0]
	assert.Equal(t, events.TypeOrderCreated, got.Event)
	assert.Equal(t, accountA, got.Data.AccountID)
}

func TestHub_DropsFailingSubscriber(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()
	accountID := uuid.Must(uuid.NewV4())

	healthy := &fakeConn{}
	broken := &fakeConn{writeErr: errors.New("broken pipe")}
	hub.Subscribe(accountID, healthy)
	hub.Subscribe(accountID, broken)
	require.Equal(t, 2, hub.SubscriberCount(accountID))

	err := hub.Publish(context.Background(), events.Event{Type: events.TypeOrderStatusChanged, AccountID: accountID})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.SubscriberCount(accountID) == 1 }, waitFor, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
	require.Eventually(t, func() bool { return len(healthy.received()) == 1 }, waitFor, 5*time.Millisecond)
}

func TestHub_StalledSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()
	accountID := uuid.Must(uuid.NewV4())

	stalled := newStalledConn()
	hub.Subscribe(accountID, stalled)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < realtime.SendBuffer+5; i++ {
			_ = hub.Publish(context.Background(), events.Event{Type: events.TypeOrderCreated, AccountID: accountID})
		}
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Publish blocked on a stalled connection")
	}
	assert.Equal(t, 0, hub.SubscriberCount(accountID), "stalled subscriber is dropped once its buffer fills")

	healthy := &fakeConn{}
	hub.Subscribe(accountID, healthy)
	require.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.TypeOrderStatusChanged, AccountID: accountID}))
	require.Eventually(t, func() bool { return len(healthy.received()) == 1 }, waitFor, 5*time.Millisecond)
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := realtime.NewHub()
	accountID := uuid.Must(uuid.NewV4())
	conn := &fakeConn{}

	sub := hub.Subscribe(accountID, conn)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	assert.Equal(t, 0, hub.SubscriberCount(accountID))
	assert.True(t, conn.isClosed())
}

func TestHub_CloseClosesAllConnections(t *testing.T) {
	hub := realtime.NewHub()
	c1, c2 := &fakeConn{}, &fakeConn{}
	hub.Subscribe(uuid.Must(uuid.NewV4()), c1)
	hub.Subscribe(uuid.Must(uuid.NewV4()), c2)

	require.NoError(t, hub.Close())
	assert.True(t, c1.isClosed())
	assert.True(t, c2.isClosed())
}

func TestHub_SubscribeWithSnapshot_SendsSnapshotFirst(t *testing.T) {
	hub := realtime.NewHub()
	defer hub.Close()
	accountID := uuid.Must(uuid.NewV4())
	conn := &fakeConn{}

	sub, err := hub.SubscribeWithSnapshot(accountID, conn, func() (realtime.Message, error) {
		// An event raised while the snapshot loads must still arrive after it.
		require.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.TypeOrderCreated, AccountID: accountID}))
		snapshot := events.Event{Type: events.TypeAccountSnapshot, AccountID: accountID, OccurredAt: time.Now()}
		return realtime.Message{Event: snapshot.Type, Data: snapshot}, nil
	})
	require.NoError(t, err)
	require.NotNil(t, sub)

	require.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.TypeOrderStatusChanged, AccountID: accountID}))

	require.Eventually(t, func() bool { return len(conn.received()) == 3 }, waitFor, 5*time.Millisecond)
	got := conn.received()
	assert.Equal(t, events.TypeAccountSnapshot, got[0].Event)
	assert.Equal(t, events.TypeOrderCreated, got[1].Event)
	assert.Equal(t, events.TypeOrderStatusChanged, got[2].Event)
}

func TestHub_SubscribeWithSnapshot_LoadFailureUnsubscribes(t *testing.T) {
	hub := realtime.NewHub()
	accountID := uuid.Must(uuid.NewV4())
	conn := &fakeConn{}

	_, err := hub.SubscribeWithSnapshot(accountID, conn, func() (realtime.Message, error) {
		return realtime.Message{}, errors.New("account not found")
	})

	require.Error(t, err)
	assert.Equal(t, 0, hub.SubscriberCount(accountID))
	assert.True(t, conn.isClosed())
}
