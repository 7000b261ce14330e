package message

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
)

const TemplateOrderReady = "order_ready"

// OrderNotifier is an events.Publisher that queues a pickup notice for the
// customer when their order becomes ready.
type OrderNotifier struct {
	messages  Service
	customers CustomerLookup
}

func NewOrderNotifier(messages Service, customers CustomerLookup) *OrderNotifier {
	return &OrderNotifier{messages: messages, customers: customers}
}

func channelFor(c *customer.Customer) (Channel, bool) {
	switch c.PreferredChannel {
	case customer.ChannelSMS:
		return ChannelSMS, c.Phone != ""
	case customer.ChannelWhatsApp:
		return ChannelWhatsApp, c.Phone != ""
	case customer.ChannelInstagramDM:
		return ChannelInstagramDM, true
	default:
		return "", false
	}
}

func (n *OrderNotifier) Publish(ctx context.Context, event events.Event) error {
	if event.Type != events.TypeOrderStatusChanged || event.Status != order.StatusReady.String() {
		return nil
	}
	o, ok := event.Data.(*order.Order)
	if !ok || o.CustomerID == nil {
		return nil
	}

	c, err := n.customers.GetCustomer(ctx, o.AccountID, *o.CustomerID)
	if err != nil {
		return fmt.Errorf("notifier: failed to load customer for order %s: %w", o.ID, err)
	}
	channel, reachable := channelFor(c)
	if !reachable {
		log.Debug().Stringer("order_id", o.ID).Msg("notifier: customer has no reachable channel")
		return nil
	}

	orderID := o.ID
	_, err = n.messages.QueueMessage(ctx, &Message{
		AccountID:   o.AccountID,
		CustomerID:  o.CustomerID,
		OrderID:     &orderID,
		Direction:   DirectionOutbound,
		Channel:     channel,
		Purpose:     PurposeOrderUpdate,
		TemplateKey: TemplateOrderReady,
		Body:        fmt.Sprintf("Your order %s is ready for pickup.", o.PickupCode),
	})
	if err != nil {
		return fmt.Errorf("notifier: failed to queue pickup notice for order %s: %w", o.ID, err)
	}
	return nil
}

func (n *OrderNotifier) Close() error { return nil }
