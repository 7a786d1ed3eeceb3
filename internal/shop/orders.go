package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
)

const estimatedDeliveryDays = 5

type stage struct {
	status      enums.OrderStatus
	label       string
	description string
}

// stages is the fixed delivery timeline seeded on every order.
var stages = []stage{
	{enums.OrderStatusPending, "Order Placed", "Your order has been placed successfully"},
	{enums.OrderStatusConfirmed, "Confirmed", "Your order has been confirmed"},
	{enums.OrderStatusShipped, "Shipped", "Your order has been shipped"},
	{enums.OrderStatusOutForDelivery, "Out for Delivery", "Your order is out for delivery"},
	{enums.OrderStatusDelivered, "Delivered", "Your order has been delivered"},
}

func stageIndex(status enums.OrderStatus) int {
	for i, s := range stages {
		if s.status == status {
			return i
		}
	}
	return -1
}

func seedTimeline(now time.Time) []TimelineEntry {
	timeline := make([]TimelineEntry, len(stages))
	confirmed := stageIndex(enums.OrderStatusConfirmed)
	for i, s := range stages {
		timeline[i] = TimelineEntry{Status: s.label, Description: s.description}
		if i <= confirmed {
			at := now
			timeline[i].Date = &at
			timeline[i].Completed = true
		}
	}
	return timeline
}

// CreateOrder turns the cart into a confirmed order at the head of the order
// list. The cart and applied promo are cleared and an order notification is
// posted. An empty cart is rejected without touching state.
func (c *Container) CreateOrder(ctx context.Context, paymentMethod enums.PaymentMethod, deliveryAddress Address) (Order, error) {
	var order Order
	err := c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		if len(next.cart) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		now := c.clock()
		eta := now.AddDate(0, 0, estimatedDeliveryDays)
		order = Order{
			ID:                c.ids.orderID(),
			Date:              now,
			Items:             cloneSlice(next.cart),
			Total:             next.totalPrice(),
			Status:            enums.OrderStatusConfirmed,
			TrackingNumber:    trackingNumber(),
			DeliveryAddress:   deliveryAddress,
			PaymentMethod:     paymentMethod,
			EstimatedDelivery: &eta,
			Timeline:          seedTimeline(now),
		}

		next.orders = append([]Order{order}, next.orders...)
		next.cart = []CartLine{}
		next.promo = nil
		c.notify(next, "Order Placed Successfully!",
			fmt.Sprintf("Order %s has been placed. Track your order for updates.", order.ID),
			enums.NotificationTypeOrder)
		return []Kind{KindOrders, KindCart, KindNotifications, KindPromo}, nil
	})
	if err != nil {
		return Order{}, err
	}

	total, _ := order.Total.Float64()
	c.metrics.ObserveOrder(string(order.PaymentMethod), total)
	return order, nil
}

// GetOrder looks an order up by id.
func (c *Container) GetOrder(orderID string) (Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.st.orderIndex(orderID); i >= 0 {
		return c.st.orders[i], true
	}
	return Order{}, false
}

func (s snapshot) orderIndex(orderID string) int {
	for i, o := range s.orders {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

var deliveryNotices = map[enums.OrderStatus]struct{ title, message string }{
	enums.OrderStatusShipped:        {"Order Shipped", "Order %s has been shipped and is on its way."},
	enums.OrderStatusOutForDelivery: {"Out for Delivery", "Order %s is out for delivery today."},
	enums.OrderStatusDelivered:      {"Order Delivered", "Order %s has been delivered. Enjoy your purchase!"},
}

// AdvanceOrder moves an order forward along its timeline, completing every
// stage up to status and posting a delivery notification. Cancelling only
// changes the status. Orders never move backwards or leave a final status.
func (c *Container) AdvanceOrder(ctx context.Context, orderID string, status enums.OrderStatus) (Order, error) {
	var updated Order
	err := c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		i := next.orderIndex(orderID)
		if i < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		order := next.orders[i]
		if order.Status.IsTerminal() {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is already %s", order.Status))
		}

		if status == enums.OrderStatusCancelled {
			order.Status = status
			next.orders[i] = order
			updated = order
			return []Kind{KindOrders}, nil
		}

		target := stageIndex(status)
		if target < 0 || target <= stageIndex(order.Status) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
		}

		now := c.clock()
		order.Timeline = cloneSlice(order.Timeline)
		for j := 0; j <= target && j < len(order.Timeline); j++ {
			if order.Timeline[j].Completed {
				continue
			}
			at := now
			order.Timeline[j].Completed = true
			order.Timeline[j].Date = &at
		}
		order.Status = status
		next.orders[i] = order
		updated = order

		if notice, ok := deliveryNotices[status]; ok {
			c.notify(next, notice.title, fmt.Sprintf(notice.message, order.ID), enums.NotificationTypeDelivery)
			return []Kind{KindOrders, KindNotifications}, nil
		}
		return []Kind{KindOrders}, nil
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}
