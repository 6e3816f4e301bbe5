package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tigerapp/oficina-api/internal/domain"
)

func TestCheckTransition_AllowedMoves(t *testing.T) {
	tests := []struct {
		name       string
		from       domain.WorkOrderStatus
		to         domain.WorkOrderStatus
		prompt     bool
		completeAt bool
	}{
		{"start work", domain.StatusAwaiting, domain.StatusInProgress, true, false},
		{"cancel before start", domain.StatusAwaiting, domain.StatusCancelled, false, false},
		{"wait for parts", domain.StatusInProgress, domain.StatusAwaitingParts, true, false},
		{"wait for customer", domain.StatusInProgress, domain.StatusAwaitingCustomer, false, false},
		{"complete", domain.StatusInProgress, domain.StatusCompleted, false, true},
		{"parts arrived", domain.StatusAwaitingParts, domain.StatusInProgress, true, false},
		{"customer answered", domain.StatusAwaitingCustomer, domain.StatusInProgress, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.CheckTransition(tt.from, tt.to)
			assert.True(t, result.Allowed)
			assert.False(t, result.NoOp)
			assert.Empty(t, result.Reason)
			assert.True(t, result.NotifyCustomerDefault)
			assert.Equal(t, tt.prompt, result.PromptEstimatedCompletion)
			assert.Equal(t, tt.completeAt, result.SetCompletedAt)
		})
	}
}

func TestCheckTransition_Rejected(t *testing.T) {
	tests := []struct {
		name string
		from domain.WorkOrderStatus
		to   domain.WorkOrderStatus
	}{
		{"skip to completed", domain.StatusAwaiting, domain.StatusCompleted},
		{"awaiting to parts", domain.StatusAwaiting, domain.StatusAwaitingParts},
		{"parts to completed", domain.StatusAwaitingParts, domain.StatusCompleted},
		{"reopen completed", domain.StatusCompleted, domain.StatusInProgress},
		{"revive cancelled", domain.StatusCancelled, domain.StatusAwaiting},
		{"unknown target", domain.StatusAwaiting, domain.WorkOrderStatus("Pronto")},
		{"unknown source", domain.WorkOrderStatus("Pronto"), domain.StatusAwaiting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.CheckTransition(tt.from, tt.to)
			assert.False(t, result.Allowed)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestCheckTransition_SameStatusIsNoOp(t *testing.T) {
	for _, st := range domain.AllWorkOrderStatuses {
		result := domain.CheckTransition(st, st)
		assert.True(t, result.Allowed, st)
		assert.True(t, result.NoOp, st)
	}
}

func TestAvailableTransitions(t *testing.T) {
	assert.Equal(t,
		[]domain.WorkOrderStatus{domain.StatusInProgress, domain.StatusCancelled},
		domain.AvailableTransitions(domain.StatusAwaiting))
	assert.Empty(t, domain.AvailableTransitions(domain.StatusCompleted))
	assert.Empty(t, domain.AvailableTransitions(domain.StatusCancelled))

	// callers may not mutate the table
	next := domain.AvailableTransitions(domain.StatusInProgress)
	next[0] = domain.StatusCancelled
	assert.Equal(t, domain.StatusAwaitingParts, domain.AvailableTransitions(domain.StatusInProgress)[0])
}

func TestWorkOrderStatus_Predicates(t *testing.T) {
	assert.True(t, domain.StatusCompleted.IsTerminal())
	assert.True(t, domain.StatusCancelled.IsTerminal())
	assert.False(t, domain.StatusAwaitingParts.IsTerminal())

	assert.True(t, domain.StatusAwaitingParts.IsDetour())
	assert.True(t, domain.StatusAwaitingCustomer.IsDetour())
	assert.False(t, domain.StatusInProgress.IsDetour())

	assert.False(t, domain.WorkOrderStatus("").IsValid())
}

func TestCheckInvoiceTransition(t *testing.T) {
	tests := []struct {
		from    domain.InvoiceStatus
		to      domain.InvoiceStatus
		allowed bool
	}{
		{domain.InvoiceStatusDraft, domain.InvoiceStatusSent, true},
		{domain.InvoiceStatusDraft, domain.InvoiceStatusPaid, true},
		{domain.InvoiceStatusSent, domain.InvoiceStatusPaid, true},
		{domain.InvoiceStatusSent, domain.InvoiceStatusCancelled, true},
		{domain.InvoiceStatusSent, domain.InvoiceStatusDraft, false},
		{domain.InvoiceStatusPaid, domain.InvoiceStatusCancelled, false},
		{domain.InvoiceStatusCancelled, domain.InvoiceStatusPaid, false},
		{domain.InvoiceStatusDraft, domain.InvoiceStatus("void"), false},
	}

	for _, tt := range tests {
		result := domain.CheckInvoiceTransition(tt.from, tt.to)
		assert.Equal(t, tt.allowed, result.Allowed, "%s -> %s", tt.from, tt.to)
		if tt.allowed {
			assert.Equal(t, tt.to == domain.InvoiceStatusPaid, result.RequiresPaymentMethod)
		} else {
			assert.NotEmpty(t, result.Reason)
		}
	}
}
