package orders

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
)

var (
	// ErrDuplicateOrder is returned when an order number is registered twice
	ErrDuplicateOrder = errors.New("order number already registered")
	// ErrOrderNotFound is returned for an unknown order number
	ErrOrderNotFound = errors.New("order not found")
	// ErrItemNotFound is returned for a receipt line the order does not have
	ErrItemNotFound = errors.New("order item not found")
	// ErrInvalidTransition is returned when the workflow step does not apply
	// to the order's current status
	ErrInvalidTransition = errors.New("invalid status transition")
)

// defaultReceiver is recorded when a receipt names nobody
const defaultReceiver = "Sistema"

// ItemReceipt records what arrived for one line
type ItemReceipt struct {
	LineNumber  int     `json:"lineNumber"`
	Quantity    float64 `json:"quantity"`
	Observation string  `json:"observation,omitempty"`
}

// Receipt is the warehouse check-in of an order. With no Items every line
// is taken as fully received.
type Receipt struct {
	ReceiverName      string        `json:"receiverName"`
	Items             []ItemReceipt `json:"items,omitempty"`
	GlobalObservation string        `json:"globalObservation,omitempty"`
}

// Book is an in-memory register of orders, safe for concurrent use
type Book struct {
	mu       sync.RWMutex
	orders   map[string]*Order
	byNumber map[string]string
	now      func() time.Time
	newID    func() string
}

// NewBook creates an empty book
func NewBook() *Book {
	return &Book{
		orders:   make(map[string]*Order),
		byNumber: make(map[string]string),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Register stores an extraction as a new pending order. The duplicate check
// and insert happen under one lock, so two uploads of the same order cannot
// both succeed.
func (b *Book) Register(result extractor.ExtractionResult, source string) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o := &Order{
		ID:        b.newID(),
		Source:    source,
		CreatedAt: b.now().UTC(),
		Header:    result.Header,
		Items:     make([]Item, len(result.Items)),
		Warnings:  append([]string{}, result.Warnings...),
		Template:  result.Template,
	}
	for i, it := range result.Items {
		o.Items[i] = Item{LineItem: it}
	}
	o.Status = DetermineStatus(*o)

	if !o.IsPlaceholder() {
		key := numberKey(o.Number())
		if id, ok := b.byNumber[key]; ok {
			return Order{}, fmt.Errorf("%w: %s (id %s)", ErrDuplicateOrder, o.Number(), id)
		}
		b.byNumber[key] = o.ID
	}
	b.orders[o.ID] = o
	return o.clone(), nil
}

// Get returns the order with the given number
func (b *Book) Get(number string) (Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.find(number)
	if !ok {
		return Order{}, false
	}
	return o.clone(), true
}

// GetByID returns the order with the given internal ID
func (b *Book) GetByID(id string) (Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.orders[id]
	if !ok {
		return Order{}, false
	}
	return o.clone(), true
}

// List returns every order, oldest first
func (b *Book) List() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o.clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number() < out[j].Number()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Counts returns how many orders are in each status
func (b *Book) Counts() map[Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[Status]int)
	for _, o := range b.orders {
		counts[o.Status]++
	}
	return counts
}

// RecordReceipt checks an order in at the warehouse
func (b *Book) RecordReceipt(number string, r Receipt) (Order, error) {
	return b.update(number, func(o *Order) error {
		if o.WithdrawalDate != nil || o.Status == StatusReturned {
			return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status)
		}

		if len(r.Items) == 0 {
			for i := range o.Items {
				o.Items[i].Received = true
				o.Items[i].ReceivedQuantity = o.Items[i].Quantity
			}
		}
		for _, ir := range r.Items {
			i := indexOfLine(o.Items, ir.LineNumber)
			if i < 0 {
				return fmt.Errorf("%w: line %d", ErrItemNotFound, ir.LineNumber)
			}
			o.Items[i].Received = ir.Quantity > 0
			o.Items[i].ReceivedQuantity = ir.Quantity
			o.Items[i].Observation = strings.TrimSpace(ir.Observation)
		}

		now := b.now().UTC()
		o.ReceiveDate = &now
		o.ReceiverName = strings.TrimSpace(r.ReceiverName)
		if o.ReceiverName == "" {
			o.ReceiverName = defaultReceiver
		}
		o.GlobalObservation = strings.TrimSpace(r.GlobalObservation)
		return nil
	})
}

// MarkReadyForPickup flags a received order as waiting for the requester
func (b *Book) MarkReadyForPickup(number string) (Order, error) {
	return b.update(number, func(o *Order) error {
		if o.Status != StatusReceived && o.Status != StatusWithObservations {
			return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status)
		}
		o.Status = StatusReadyForPickup
		return nil
	})
}

// RecordWithdrawal closes an order picked up by withdrawer
func (b *Book) RecordWithdrawal(number, withdrawer string) (Order, error) {
	withdrawer = strings.ToUpper(strings.TrimSpace(withdrawer))
	if withdrawer == "" {
		return Order{}, fmt.Errorf("withdrawer name cannot be empty")
	}

	return b.update(number, func(o *Order) error {
		if o.ReceiveDate == nil || o.Status == StatusReturned {
			return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status)
		}
		now := b.now().UTC()
		o.WithdrawalDate = &now
		o.Withdrawer = withdrawer
		return nil
	})
}

// MarkReturned records that the order went back to the supplier. The reason
// is kept in the global observation.
func (b *Book) MarkReturned(number, reason string) (Order, error) {
	return b.update(number, func(o *Order) error {
		if o.WithdrawalDate != nil {
			return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status)
		}
		note := "Devolvido"
		if reason = strings.TrimSpace(reason); reason != "" {
			note += ": " + reason
		}
		if o.GlobalObservation != "" {
			note = o.GlobalObservation + "; " + note
		}
		o.GlobalObservation = note
		return nil
	})
}

// update applies fn to the stored order and re-derives its status
func (b *Book) update(number string, fn func(o *Order) error) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.find(number)
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, number)
	}

	// work on a copy so a failed step leaves the order untouched
	draft := o.clone()
	if err := fn(&draft); err != nil {
		return Order{}, err
	}
	draft.Status = DetermineStatus(draft)
	*o = draft
	return o.clone(), nil
}

func (b *Book) find(number string) (*Order, bool) {
	if id, ok := b.byNumber[numberKey(number)]; ok {
		return b.orders[id], true
	}
	// placeholder numbers are not indexed
	for _, o := range b.orders {
		if o.Number() == strings.TrimSpace(number) {
			return o, true
		}
	}
	return nil, false
}

func numberKey(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

func indexOfLine(items []Item, line int) int {
	for i, it := range items {
		if it.LineNumber == line {
			return i
		}
	}
	return -1
}
