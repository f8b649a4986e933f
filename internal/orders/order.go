// Package orders keeps the registered purchase orders and their receiving
// workflow: receipt at the warehouse, pickup by the requester, or return
// to the supplier.
package orders

import (
	"strings"
	"time"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
	"github.com/a3tai/mcp-order-reader/internal/locale"
)

// Status is the workflow state of an order
type Status string

const (
	StatusPending          Status = "pending"
	StatusReceived         Status = "received"
	StatusWithObservations Status = "with_observations"
	StatusReadyForPickup   Status = "ready_for_pickup"
	StatusCompleted        Status = "completed"
	StatusReturned         Status = "returned"
)

// placeholderPrefix marks order numbers synthesized by the extractor
const placeholderPrefix = "AUTO"

// ReturnKeywords flag an observation as a return to the supplier
var ReturnKeywords = []string{
	"devolvido", "retorno", "volta", "reembolso", "devolução",
	"não conforme", "avaria", "avariado",
}

// Item is an extracted line item plus its receiving state
type Item struct {
	extractor.LineItem
	Received         bool    `json:"received"`
	ReceivedQuantity float64 `json:"receivedQuantity"`
	Observation      string  `json:"observation,omitempty"`
}

// FullyReceived reports whether the whole ordered quantity arrived
func (it Item) FullyReceived() bool {
	return it.Received && it.ReceivedQuantity >= it.Quantity
}

// Order is a registered purchase order
type Order struct {
	ID        string                   `json:"id"`
	Source    string                   `json:"source"`
	CreatedAt time.Time                `json:"createdAt"`
	Header    extractor.RawOrderHeader `json:"header"`
	Items     []Item                   `json:"items"`
	Warnings  []string                 `json:"warnings"`
	Template  extractor.Template       `json:"template"`
	Status    Status                   `json:"status"`

	GlobalObservation string     `json:"globalObservation,omitempty"`
	ReceiveDate       *time.Time `json:"receiveDate,omitempty"`
	ReceiverName      string     `json:"receiverName,omitempty"`
	WithdrawalDate    *time.Time `json:"withdrawalDate,omitempty"`
	Withdrawer        string     `json:"withdrawer,omitempty"`
}

// Number returns the order number from the header
func (o Order) Number() string {
	return o.Header.OrderNumber
}

// Total sums the total price of every item
func (o Order) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.TotalPrice
	}
	return sum
}

// IsPlaceholder reports whether the order number was synthesized because
// the document had none
func (o Order) IsPlaceholder() bool {
	return strings.HasPrefix(o.Header.OrderNumber, placeholderPrefix)
}

// DetermineStatus derives the workflow state from the order's fields. A
// return keyword in any observation wins over everything else.
func DetermineStatus(o Order) Status {
	hasItemObservation := false
	returned := isReturnObservation(o.GlobalObservation)
	for _, it := range o.Items {
		if strings.TrimSpace(it.Observation) != "" {
			hasItemObservation = true
		}
		if isReturnObservation(it.Observation) {
			returned = true
		}
	}

	switch {
	case returned:
		return StatusReturned
	case o.WithdrawalDate != nil:
		return StatusCompleted
	case o.Status == StatusReadyForPickup:
		return StatusReadyForPickup
	case o.ReceiveDate != nil:
		if hasItemObservation || strings.TrimSpace(o.GlobalObservation) != "" || !allReceived(o.Items) {
			return StatusWithObservations
		}
		return StatusReceived
	}
	return StatusPending
}

func allReceived(items []Item) bool {
	for _, it := range items {
		if !it.FullyReceived() {
			return false
		}
	}
	return true
}

func isReturnObservation(obs string) bool {
	if strings.TrimSpace(obs) == "" {
		return false
	}
	return locale.ContainsAny(locale.Fold(obs), locale.FoldAll(ReturnKeywords))
}

// clone deep copies o so callers never share item slices with the book
func (o *Order) clone() Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	c.Warnings = append([]string(nil), o.Warnings...)
	if o.ReceiveDate != nil {
		t := *o.ReceiveDate
		c.ReceiveDate = &t
	}
	if o.WithdrawalDate != nil {
		t := *o.WithdrawalDate
		c.WithdrawalDate = &t
	}
	return c
}
