package orders

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
	"github.com/a3tai/mcp-order-reader/internal/layout"
)

func sampleResult(number string) extractor.ExtractionResult {
	return extractor.ExtractionResult{
		Header: extractor.RawOrderHeader{
			OrderNumber:   number,
			SupplierName:  "PAPELARIA MODELO",
			SupplierTaxID: "12.345.678/0001-90",
			SenderName:    "MARIA SOUZA",
			SentDate:      "24/04/2025",
		},
		Items: []extractor.LineItem{
			{LineNumber: 1, Code: "001234", Description: "CANETA AZUL", Quantity: 10, Unit: "UN", UnitPrice: 2.5, TotalPrice: 25},
			{LineNumber: 2, Code: "005678", Description: "PAPEL A4", Quantity: 5, Unit: "PCT", UnitPrice: 22.9, TotalPrice: 114.5},
		},
		Warnings: []string{},
		Template: extractor.TemplateStandardOrder,
	}
}

func newTestBook() *Book {
	b := NewBook()
	clock := time.Date(2025, 4, 24, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return b
}

func TestRegister(t *testing.T) {
	b := newTestBook()

	o, err := b.Register(sampleResult("60726"), "pedido.pdf")
	require.NoError(t, err)

	assert.Equal(t, "id-1", o.ID)
	assert.Equal(t, "pedido.pdf", o.Source)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "60726", o.Number())
	assert.False(t, o.CreatedAt.IsZero())
	require.Len(t, o.Items, 2)
	assert.False(t, o.Items[0].Received)
	assert.InDelta(t, 139.5, o.Total(), 0.001)

	got, ok := b.Get(" 60726 ")
	require.True(t, ok)
	assert.Equal(t, o, got)

	byID, ok := b.GetByID("id-1")
	require.True(t, ok)
	assert.Equal(t, o, byID)
}

func TestRegisterWithRealIDs(t *testing.T) {
	b := NewBook()
	a, err := b.Register(sampleResult("1"), "")
	require.NoError(t, err)
	c, err := b.Register(sampleResult("2"), "")
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	b := newTestBook()
	_, err := b.Register(sampleResult("60726"), "a.pdf")
	require.NoError(t, err)

	_, err = b.Register(sampleResult("60726"), "b.pdf")
	assert.ErrorIs(t, err, ErrDuplicateOrder)
	assert.Len(t, b.List(), 1)
}

func TestRegisterPlaceholdersNeverCollide(t *testing.T) {
	b := newTestBook()
	_, err := b.Register(sampleResult("AUTO000001"), "a.pdf")
	require.NoError(t, err)
	_, err = b.Register(sampleResult("AUTO000001"), "b.pdf")
	require.NoError(t, err)

	assert.Len(t, b.List(), 2)
	_, ok := b.Get("AUTO000001")
	assert.True(t, ok)
}

func TestRegisterFailedExtractions(t *testing.T) {
	e, err := extractor.New(extractor.Options{OrderNumberFallback: func() string { panic("broken") }})
	require.NoError(t, err)
	b := newTestBook()

	for range 2 {
		result := e.Extract([]layout.Line{{Y: 10, Tokens: []layout.PositionedToken{{Text: "texto", X: 10, Y: 10}}}})
		o, err := b.Register(result, "falha.pdf")
		require.NoError(t, err)
		assert.True(t, o.IsPlaceholder())
	}
	assert.Len(t, b.List(), 2)
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	b := NewBook()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.Register(sampleResult("60726"), ""); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}

func TestReturnedCopiesAreIsolated(t *testing.T) {
	b := newTestBook()
	o, err := b.Register(sampleResult("60726"), "")
	require.NoError(t, err)

	o.Items[0].Description = "changed"
	got, _ := b.Get("60726")
	assert.Equal(t, "CANETA AZUL", got.Items[0].Description)
}

func TestWorkflow(t *testing.T) {
	b := newTestBook()
	_, err := b.Register(sampleResult("60726"), "")
	require.NoError(t, err)

	_, err = b.MarkReadyForPickup("60726")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = b.RecordWithdrawal("60726", "joao")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err := b.RecordReceipt("60726", Receipt{ReceiverName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, o.Status)
	assert.Equal(t, "Ana", o.ReceiverName)
	require.NotNil(t, o.ReceiveDate)
	assert.True(t, o.Items[1].FullyReceived())

	o, err = b.MarkReadyForPickup("60726")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, o.Status)

	o, err = b.RecordWithdrawal("60726", " joao silva ")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Equal(t, "JOAO SILVA", o.Withdrawer)

	_, err = b.MarkReturned("60726", "avaria")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, map[Status]int{StatusCompleted: 1}, b.Counts())
}

func TestPartialReceipt(t *testing.T) {
	b := newTestBook()
	_, err := b.Register(sampleResult("60726"), "")
	require.NoError(t, err)

	o, err := b.RecordReceipt("60726", Receipt{Items: []ItemReceipt{
		{LineNumber: 1, Quantity: 10},
		{LineNumber: 2, Quantity: 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, StatusWithObservations, o.Status)
	assert.Equal(t, defaultReceiver, o.ReceiverName)

	_, err = b.RecordReceipt("60726", Receipt{Items: []ItemReceipt{{LineNumber: 9, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrItemNotFound)

	// the failed receipt left the order untouched
	got, _ := b.Get("60726")
	assert.InDelta(t, 3.0, got.Items[1].ReceivedQuantity, 0.001)
}

func TestMarkReturned(t *testing.T) {
	b := newTestBook()
	_, err := b.Register(sampleResult("60726"), "")
	require.NoError(t, err)

	o, err := b.MarkReturned("60726", "produto errado")
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, o.Status)
	assert.Equal(t, "Devolvido: produto errado", o.GlobalObservation)

	_, err = b.RecordReceipt("60726", Receipt{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUnknownOrder(t *testing.T) {
	b := newTestBook()

	_, ok := b.Get("1")
	assert.False(t, ok)
	_, err := b.RecordReceipt("1", Receipt{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = b.RecordWithdrawal("1", "")
	assert.Error(t, err)
}

func TestListOrder(t *testing.T) {
	b := newTestBook()
	for _, n := range []string{"3", "1", "2"} {
		_, err := b.Register(sampleResult(n), "")
		require.NoError(t, err)
	}

	list := b.List()
	require.Len(t, list, 3)
	assert.Equal(t, "3", list[0].Number())
	assert.Equal(t, "2", list[2].Number())
}
