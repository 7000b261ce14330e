package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"github.com/vasiliy-maslov/foodtruck-service/internal/realtime"
)

const (
	snapshotTimeout = 5 * time.Second
	streamWriteWait = 10 * time.Second
	streamReadLimit = 4096
)

// deadlineConn bounds every write so a peer that stops reading is eventually dropped.
type deadlineConn struct {
	*websocket.Conn
}

func (c deadlineConn) WriteJSON(v any) error {
	if err := c.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// AccountSnapshot is the first message on a stream: the account document and
// every order that has not reached a terminal status.
type AccountSnapshot struct {
	Account    *account.Account `json:"account"`
	OpenOrders []order.Order    `json:"open_orders"`
}

func (h *Handler) loadSnapshot(ctx context.Context, accountID uuid.UUID) (realtime.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	acct, err := h.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return realtime.Message{}, err
	}
	orders, err := h.orders.ListOrders(ctx, accountID, order.ListFilter{})
	if err != nil {
		return realtime.Message{}, err
	}

	open := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if !o.Status.IsTerminal() {
			open = append(open, o)
		}
	}

	event := events.Event{
		Type:       events.TypeAccountSnapshot,
		AccountID:  accountID,
		OccurredAt: time.Now().UTC(),
		Data:       AccountSnapshot{Account: acct, OpenOrders: open},
	}
	return realtime.Message{Event: event.Type, Data: event}, nil
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Realtime stream is not enabled")
		return
	}
	accountID := accountIDFrom(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Stringer("account_id", accountID).Msg("WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(streamReadLimit)

	sub, err := h.hub.SubscribeWithSnapshot(accountID, deadlineConn{conn}, func() (realtime.Message, error) {
		return h.loadSnapshot(r.Context(), accountID)
	})
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("Failed to start account stream")
		return
	}
	defer h.hub.Unsubscribe(sub)

	// Inbound messages are ignored; the loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Err(err).Stringer("account_id", accountID).Msg("Account stream closed")
			return
		}
	}
}
