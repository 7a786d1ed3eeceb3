package shop

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// ReasonOther asks the shopper to describe the reason in free text.
const ReasonOther = "Other"

var returnReasons = []string{
	"Product damaged or defective",
	"Wrong item received",
	"Size or fit issues",
	"Product not as described",
	"Changed my mind",
	"Quality not as expected",
	ReasonOther,
}

// ReturnReasons lists the reasons a shopper can pick from.
func ReturnReasons() []string {
	return cloneSlice(returnReasons)
}

// ResolveReason turns a picked reason into the stored one. "Other" is
// replaced by the free-text description, which must not be blank.
func ResolveReason(reason, other string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "select a reason for return")
	}
	if reason != ReasonOther {
		return reason, nil
	}
	other = strings.TrimSpace(other)
	if other == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "describe the reason for return")
	}
	return other, nil
}

// CreateReturnRequest files a pending return for items of an existing order.
// The refund is the sum of price times quantity over the returned lines.
func (c *Container) CreateReturnRequest(ctx context.Context, orderID string, items []CartLine, reason string) (ReturnRequest, error) {
	var req ReturnRequest
	err := c.mutate(ctx, func(next *snapshot) ([]Kind, error) {
		if next.orderIndex(orderID) < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		req = newReturnRequest(c, orderID, items, reason)
		next.returns = append([]ReturnRequest{req}, next.returns...)
		c.notify(next, "Return Request Submitted",
			fmt.Sprintf("Your return request %s has been submitted and is under review.", req.ID),
			enums.NotificationTypeOrder)
		return []Kind{KindReturns, KindNotifications}, nil
	})
	if err != nil {
		return ReturnRequest{}, err
	}
	c.metrics.IncReturn()
	return req, nil
}

// CreateReturnRequestByIndex selects the returned lines by their position in
// the order, which keeps the returned items a subset of the order's items.
func (c *Container) CreateReturnRequestByIndex(ctx context.Context, orderID string, indices []int, reason string) (ReturnRequest, error) {
	order, ok := c.GetOrder(orderID)
	if !ok {
		return ReturnRequest{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if len(indices) == 0 {
		return ReturnRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "select at least one item to return")
	}

	picked := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(order.Items) {
			return ReturnRequest{}, pkgerrors.Newf(pkgerrors.CodeValidation, "item index %d is out of range", idx)
		}
		picked[idx] = struct{}{}
	}
	ordered := make([]int, 0, len(picked))
	for idx := range picked {
		ordered = append(ordered, idx)
	}
	sort.Ints(ordered)

	items := make([]CartLine, 0, len(ordered))
	for _, idx := range ordered {
		items = append(items, order.Items[idx])
	}
	return c.CreateReturnRequest(ctx, orderID, items, reason)
}

func newReturnRequest(c *Container, orderID string, items []CartLine, reason string) ReturnRequest {
	refund := decimal.Zero
	for _, line := range items {
		refund = refund.Add(line.Subtotal())
	}
	return ReturnRequest{
		ID:           c.ids.returnID(),
		OrderID:      orderID,
		Items:        orEmpty(cloneSlice(items)),
		Reason:       reason,
		Status:       enums.ReturnStatusPending,
		Date:         c.clock(),
		RefundAmount: refund,
	}
}

// ReturnableOrders lists delivered orders, newest first.
func (c *Container) ReturnableOrders() []Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []Order{}
	for _, o := range c.st.orders {
		if o.Status == enums.OrderStatusDelivered {
			out = append(out, o)
		}
	}
	return out
}

// ActiveReturns lists pending and approved requests.
func (c *Container) ActiveReturns() []ReturnRequest {
	return c.filterReturns(func(s enums.ReturnStatus) bool { return s.IsActive() })
}

// ReturnHistory lists completed and rejected requests.
func (c *Container) ReturnHistory() []ReturnRequest {
	return c.filterReturns(func(s enums.ReturnStatus) bool { return !s.IsActive() })
}

func (c *Container) filterReturns(keep func(enums.ReturnStatus) bool) []ReturnRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []ReturnRequest{}
	for _, r := range c.st.returns {
		if keep(r.Status) {
			out = append(out, r)
		}
	}
	return out
}
