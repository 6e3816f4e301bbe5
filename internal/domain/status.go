package domain

import "fmt"

// WorkOrderStatus is the lifecycle state of a work order. Values are the
// labels shown to shop staff and stored as-is.
type WorkOrderStatus string

const (
	StatusAwaiting         WorkOrderStatus = "Aguardando"
	StatusInProgress       WorkOrderStatus = "Em Andamento"
	StatusAwaitingParts    WorkOrderStatus = "Aguardando Peças"
	StatusAwaitingCustomer WorkOrderStatus = "Aguardando Cliente"
	StatusCompleted        WorkOrderStatus = "Concluído"
	StatusCancelled        WorkOrderStatus = "Cancelado"
)

// AllWorkOrderStatuses in display order
var AllWorkOrderStatuses = []WorkOrderStatus{
	StatusAwaiting,
	StatusInProgress,
	StatusAwaitingParts,
	StatusAwaitingCustomer,
	StatusCompleted,
	StatusCancelled,
}

var workOrderTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	StatusAwaiting:         {StatusInProgress, StatusCancelled},
	StatusInProgress:       {StatusAwaitingParts, StatusAwaitingCustomer, StatusCompleted, StatusCancelled},
	StatusAwaitingParts:    {StatusInProgress, StatusCancelled},
	StatusAwaitingCustomer: {StatusInProgress, StatusCancelled},
	StatusCompleted:        {},
	StatusCancelled:        {},
}

// IsValid reports whether s is one of the known statuses
func (s WorkOrderStatus) IsValid() bool {
	_, ok := workOrderTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are offered from s
func (s WorkOrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsDetour reports whether s is one of the waiting states entered from Em Andamento
func (s WorkOrderStatus) IsDetour() bool {
	return s == StatusAwaitingParts || s == StatusAwaitingCustomer
}

// AvailableTransitions returns the statuses reachable from s
func AvailableTransitions(from WorkOrderStatus) []WorkOrderStatus {
	next := workOrderTransitions[from]
	out := make([]WorkOrderStatus, len(next))
	copy(out, next)
	return out
}

// TransitionResult describes whether a status change is allowed and what
// should accompany it.
type TransitionResult struct {
	Allowed bool
	// NoOp is set when from == to; nothing is written.
	NoOp   bool
	Reason string
	// PromptEstimatedCompletion asks the caller for a new estimated completion date.
	PromptEstimatedCompletion bool
	NotifyCustomerDefault     bool
	SetCompletedAt            bool
}

// CheckTransition validates a work order status change
func CheckTransition(from, to WorkOrderStatus) TransitionResult {
	if !to.IsValid() {
		return TransitionResult{Reason: fmt.Sprintf("unknown status %q", to)}
	}
	if !from.IsValid() {
		return TransitionResult{Reason: fmt.Sprintf("unknown current status %q", from)}
	}
	if from == to {
		return TransitionResult{Allowed: true, NoOp: true}
	}
	if from.IsTerminal() {
		return TransitionResult{Reason: fmt.Sprintf("work order is %s and cannot change status", from)}
	}

	for _, candidate := range workOrderTransitions[from] {
		if candidate == to {
			return TransitionResult{
				Allowed:                   true,
				PromptEstimatedCompletion: to == StatusInProgress || to == StatusAwaitingParts,
				NotifyCustomerDefault:     true,
				SetCompletedAt:            to == StatusCompleted,
			}
		}
	}
	return TransitionResult{Reason: fmt.Sprintf("transition from %s to %s is not allowed", from, to)}
}

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusSent:      {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {},
}

func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

// IsTerminal reports whether the invoice can no longer be modified
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// InvoiceTransitionResult mirrors TransitionResult for invoices
type InvoiceTransitionResult struct {
	Allowed               bool
	Reason                string
	RequiresPaymentMethod bool
}

// CheckInvoiceTransition validates an invoice status change
func CheckInvoiceTransition(from, to InvoiceStatus) InvoiceTransitionResult {
	if !to.IsValid() {
		return InvoiceTransitionResult{Reason: fmt.Sprintf("unknown invoice status %q", to)}
	}
	for _, candidate := range invoiceTransitions[from] {
		if candidate == to {
			return InvoiceTransitionResult{Allowed: true, RequiresPaymentMethod: to == InvoiceStatusPaid}
		}
	}
	return InvoiceTransitionResult{Reason: fmt.Sprintf("invoice cannot move from %s to %s", from, to)}
}
