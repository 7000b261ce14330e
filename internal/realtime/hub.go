package realtime

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
)

// SendBuffer is how many messages may wait for a slow connection before the
// hub gives up on it.
const SendBuffer = 32

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Message struct {
	Event string       `json:"event"`
	Data  events.Event `json:"data"`
}

// Subscription is one live connection listening to one account. Only its
// writer goroutine touches conn after registration.
type Subscription struct {
	id        uint64
	accountID uuid.UUID
	conn      Conn
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription(accountID uuid.UUID, conn Conn) *Subscription {
	return &Subscription{
		accountID: accountID,
		conn:      conn,
		send:      make(chan Message, SendBuffer),
		done:      make(chan struct{}),
	}
}

// enqueue never blocks; false means the buffer is full or the subscription is gone.
func (s *Subscription) enqueue(msg Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

type Hub struct {
	mu        sync.RWMutex
	nextID    uint64
	byAccount map[uuid.UUID]map[uint64]*Subscription
}

func NewHub() *Hub {
	return &Hub{byAccount: make(map[uuid.UUID]map[uint64]*Subscription)}
}

func (h *Hub) Subscribe(accountID uuid.UUID, conn Conn) *Subscription {
	sub := newSubscription(accountID, conn)
	h.register(sub)
	go h.writeLoop(sub)
	return sub
}

// SubscribeWithSnapshot registers conn and writes the message built by snapshot
// before any published event can reach the connection. Events published while
// the snapshot loads wait in the subscription's buffer.
func (h *Hub) SubscribeWithSnapshot(accountID uuid.UUID, conn Conn, snapshot func() (Message, error)) (*Subscription, error) {
	sub := newSubscription(accountID, conn)
	h.register(sub)

	msg, err := snapshot()
	if err == nil {
		err = conn.WriteJSON(msg)
	}
	if err != nil {
		h.Unsubscribe(sub)
		return nil, err
	}

	go h.writeLoop(sub)
	return sub, nil
}

func (h *Hub) writeLoop(sub *Subscription) {
	for {
		select {
		case <-sub.done:
			return
		case msg := <-sub.send:
			if err := sub.conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Stringer("account_id", sub.accountID).Str("event_type", msg.Event).Msg("realtime: write failed, dropping subscriber")
				h.Unsubscribe(sub)
				return
			}
		}
	}
}

func (h *Hub) register(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub.id = h.nextID
	subs, ok := h.byAccount[sub.accountID]
	if !ok {
		subs = make(map[uint64]*Subscription)
		h.byAccount[sub.accountID] = subs
	}
	subs[sub.id] = sub

	log.Debug().Stringer("account_id", sub.accountID).Int("subscribers", len(subs)).Msg("realtime: subscriber registered")
}

// Unsubscribe closes the connection and forgets it. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	subs, ok := h.byAccount[sub.accountID]
	if ok {
		if _, ok = subs[sub.id]; ok {
			delete(subs, sub.id)
			if len(subs) == 0 {
				delete(h.byAccount, sub.accountID)
			}
		}
	}
	h.mu.Unlock()

	sub.close()
	if ok {
		log.Debug().Stringer("account_id", sub.accountID).Msg("realtime: subscriber removed")
	}
}

func (h *Hub) SubscriberCount(accountID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byAccount[accountID])
}

// Publish implements events.Publisher. It only queues messages, so a stalled
// connection never holds up the caller; a subscriber whose buffer is full is dropped.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	msg := Message{Event: event.Type, Data: event}

	var slow []*Subscription
	h.mu.RLock()
	for _, sub := range h.byAccount[event.AccountID] {
		if !sub.enqueue(msg) {
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		log.Warn().Stringer("account_id", event.AccountID).Str("event_type", event.Type).Msg("realtime: subscriber too slow, dropping")
		h.Unsubscribe(sub)
	}
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	var all []*Subscription
	for accountID, subs := range h.byAccount {
		for _, sub := range subs {
			all = append(all, sub)
		}
		delete(h.byAccount, accountID)
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.close()
	}
	return nil
}
