package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/logger"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// History action labels shown to shop staff
const (
	HistoryCreated          = "OS Criada"
	HistoryStatusChanged    = "Status Atualizado"
	HistoryMechanicAssigned = "Mecânico Atribuído"
	HistoryLinesChanged     = "Itens Atualizados"
)

// WorkOrderService owns the work order aggregate: header, lines and history
type WorkOrderService struct {
	db         *gorm.DB
	workOrders *repository.WorkOrderRepository
	history    *repository.WorkOrderHistoryRepository
	customers  *repository.CustomerRepository
	vehicles   *repository.VehicleRepository
	users      *repository.UserRepository
	catalog    *repository.CatalogRepository
	inventory  *repository.InventoryRepository
	invoices   *repository.InvoiceRepository
	numbers    *NumberSequenceService
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkOrderService(
	db *gorm.DB,
	workOrders *repository.WorkOrderRepository,
	history *repository.WorkOrderHistoryRepository,
	customers *repository.CustomerRepository,
	vehicles *repository.VehicleRepository,
	users *repository.UserRepository,
	catalog *repository.CatalogRepository,
	inventory *repository.InventoryRepository,
	invoices *repository.InvoiceRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		db:         db,
		workOrders: workOrders,
		history:    history,
		customers:  customers,
		vehicles:   vehicles,
		users:      users,
		catalog:    catalog,
		inventory:  inventory,
		invoices:   invoices,
		numbers:    numbers,
		logger:     logger,
		now:        time.Now,
	}
}

// txRepos bundles repositories bound to one transaction
type txRepos struct {
	workOrders *repository.WorkOrderRepository
	history    *repository.WorkOrderHistoryRepository
	customers  *repository.CustomerRepository
	vehicles   *repository.VehicleRepository
	users      *repository.UserRepository
	catalog    *repository.CatalogRepository
	inventory  *repository.InventoryRepository
	numbers    *NumberSequenceService
}

func (s *WorkOrderService) bind(tx *gorm.DB) txRepos {
	return txRepos{
		workOrders: s.workOrders.WithTx(tx),
		history:    s.history.WithTx(tx),
		customers:  s.customers.WithTx(tx),
		vehicles:   s.vehicles.WithTx(tx),
		users:      s.users.WithTx(tx),
		catalog:    s.catalog.WithTx(tx),
		inventory:  s.inventory.WithTx(tx),
		numbers:    s.numbers.WithTx(tx),
	}
}

func validateCreateWorkOrder(req *domain.CreateWorkOrderRequest) error {
	v := newValidationError()
	if req.CustomerID == uuid.Nil {
		v.Add("customerId", "customer is required")
	}
	if req.VehicleID == uuid.Nil {
		v.Add("vehicleId", "vehicle is required")
	}
	if len(req.Services) == 0 {
		v.Add("services", "at least one service is required")
	}
	for i, line := range req.Services {
		validateServiceLine(v, fmt.Sprintf("services[%d]", i), line)
	}
	for i, line := range req.Parts {
		validatePartLine(v, fmt.Sprintf("parts[%d]", i), line)
	}
	return v.OrNil()
}

func validateServiceLine(v *ValidationError, field string, line domain.ServiceLineInput) {
	if line.ServiceID == uuid.Nil {
		v.Add(field+".serviceId", "service is required")
	}
	if line.Quantity != nil && !line.Quantity.IsPositive() {
		v.Add(field+".quantity", "must be greater than 0")
	}
	if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
		v.Add(field+".unitPrice", "must not be negative")
	}
}

func validatePartLine(v *ValidationError, field string, line domain.PartLineInput) {
	if line.ItemID == uuid.Nil {
		v.Add(field+".itemId", "item is required")
	}
	if line.Quantity < 1 {
		v.Add(field+".quantity", "must be at least 1")
	}
	if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
		v.Add(field+".unitPrice", "must not be negative")
	}
}

func (s *WorkOrderService) historyEntry(ctx context.Context, workOrderID uuid.UUID, action, description string) *domain.WorkOrderHistory {
	entry := &domain.WorkOrderHistory{
		WorkOrderID: workOrderID,
		Action:      action,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if actor := auth.Actor(ctx); actor != nil {
		entry.PerformedByID = actor.ActorID()
		entry.PerformedName = actor.DisplayName
	}
	return entry
}

// Create validates the request and, in one transaction, assigns the order
// number, stores header and lines, recomputes the total and records the
// creation history entry.
func (s *WorkOrderService) Create(ctx context.Context, req *domain.CreateWorkOrderRequest) (*domain.WorkOrderDTO, error) {
	if err := validateCreateWorkOrder(req); err != nil {
		return nil, err
	}

	var id uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		if ok, err := r.customers.Exists(ctx, req.CustomerID); err != nil {
			return storeError("load customer", "customer", req.CustomerID, err)
		} else if !ok {
			return notFound("customer", req.CustomerID)
		}

		vehicle, err := r.vehicles.GetByID(ctx, req.VehicleID)
		if err != nil {
			return storeError("load vehicle", "vehicle", req.VehicleID, err)
		}
		if vehicle.CustomerID != req.CustomerID {
			v := newValidationError()
			v.Add("vehicleId", "vehicle does not belong to the customer")
			return v
		}

		if req.MechanicID != nil {
			if _, err := r.users.GetByID(ctx, *req.MechanicID); err != nil {
				return storeError("load mechanic", "mechanic", *req.MechanicID, err)
			}
		}

		number, err := r.numbers.GenerateWorkOrderNumber(ctx)
		if err != nil {
			return &PersistenceError{Op: "generate work order number", Err: err}
		}

		wo := &domain.WorkOrder{
			OrderNumber:         number,
			CustomerID:          req.CustomerID,
			VehicleID:           req.VehicleID,
			MechanicID:          req.MechanicID,
			Status:              domain.StatusAwaiting,
			ProblemDescription:  req.ProblemDescription,
			EstimatedCompletion: utcPtr(req.EstimatedCompletion),
			TotalAmount:         decimal.Zero,
		}
		if actor := auth.Actor(ctx); actor != nil {
			wo.CreatedByID = actor.ActorID()
		}
		if err := r.workOrders.Create(ctx, wo); err != nil {
			return storeError("create work order", "work order", number, err)
		}
		id = wo.ID

		for _, line := range req.Services {
			if err := s.addServiceLine(ctx, r, wo.ID, line); err != nil {
				return err
			}
		}
		for _, line := range req.Parts {
			if err := s.addPartLine(ctx, r, wo.ID, line); err != nil {
				return err
			}
		}

		if _, err := r.workOrders.RecalculateTotal(ctx, wo.ID); err != nil {
			return storeError("recalculate total", "work order", wo.ID, err)
		}

		entry := s.historyEntry(ctx, wo.ID, HistoryCreated, "Ordem de serviço criada no sistema")
		to := domain.StatusAwaiting
		entry.ToStatus = &to
		if err := r.history.Append(ctx, entry); err != nil {
			return storeError("append history", "work order history", wo.ID, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to create work order",
			zap.String("customer_id", req.CustomerID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("work order created", zap.String("work_order_id", id.String()))
	return s.GetByID(ctx, id)
}

func (s *WorkOrderService) addServiceLine(ctx context.Context, r txRepos, workOrderID uuid.UUID, in domain.ServiceLineInput) error {
	svc, err := r.catalog.GetByID(ctx, in.ServiceID)
	if err != nil {
		return storeError("load service", "service", in.ServiceID, err)
	}

	quantity := decimal.NewFromInt(1)
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	unitPrice := svc.BasePrice
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}

	line := &domain.WorkOrderServiceLine{
		WorkOrderID: workOrderID,
		ServiceID:   svc.ID,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Round(2),
		TotalPrice:  domain.LineTotal(quantity, unitPrice),
	}
	if err := r.workOrders.AddServiceLine(ctx, line); err != nil {
		return storeError("add service line", "service line", svc.ID, err)
	}
	return nil
}

// addPartLine takes the parts from stock when enough is available; otherwise
// the line is stored with InStock=false and stock is left alone
func (s *WorkOrderService) addPartLine(ctx context.Context, r txRepos, workOrderID uuid.UUID, in domain.PartLineInput) error {
	item, err := r.inventory.GetByID(ctx, in.ItemID)
	if err != nil {
		return storeError("load inventory item", "inventory item", in.ItemID, err)
	}

	unitPrice := item.UnitPrice
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}

	inStock := true
	if err := r.inventory.AdjustStock(ctx, item.ID, -in.Quantity); err != nil {
		if !errors.Is(err, repository.ErrInsufficientStock) {
			return storeError("reserve stock", "inventory item", item.ID, err)
		}
		inStock = false
	}

	line := &domain.WorkOrderPartLine{
		WorkOrderID: workOrderID,
		ItemID:      item.ID,
		Quantity:    in.Quantity,
		UnitPrice:   unitPrice.Round(2),
		TotalPrice:  domain.LineTotal(decimal.NewFromInt(int64(in.Quantity)), unitPrice),
		InStock:     inStock,
	}
	if err := r.workOrders.AddPartLine(ctx, line); err != nil {
		return storeError("add part line", "part line", item.ID, err)
	}
	return nil
}

// GetByID returns the joined work order
func (s *WorkOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrderDTO, error) {
	wo, err := s.workOrders.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get work order", "work order", id, err)
	}
	dto := mapper.ToWorkOrderDTO(wo)
	return &dto, nil
}

// List returns work orders matching every set filter, newest first
func (s *WorkOrderService) List(ctx context.Context, filter repository.WorkOrderFilter, page repository.Page) (*domain.PaginatedResponse, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		v := newValidationError()
		v.Add("status", fmt.Sprintf("unknown status %q", filter.Status))
		return nil, v
	}

	orders, total, err := s.workOrders.List(ctx, filter, page)
	if err != nil {
		return nil, storeError("list work orders", "work order", "", err)
	}

	dtos := make([]domain.WorkOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToWorkOrderDTO(&orders[i])
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Update applies a partial update. A status change is checked against the
// lifecycle table and recorded in history within the same transaction.
func (s *WorkOrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateWorkOrderRequest) (*domain.WorkOrderDTO, error) {
	if req.Status != nil && !req.Status.IsValid() {
		v := newValidationError()
		v.Add("status", fmt.Sprintf("unknown status %q", *req.Status))
		return nil, v
	}

	completed := false
	var completedOrder domain.WorkOrder

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)

		wo, err := r.workOrders.GetHeader(ctx, id)
		if err != nil {
			return storeError("get work order", "work order", id, err)
		}
		if wo.Status.IsTerminal() {
			// only a bare repeat of the final status passes, and it writes nothing
			if req.Status == nil || *req.Status != wo.Status || req.ChangesDetails() {
				return invalidState("work order %s is %s and can no longer be changed", wo.OrderNumber, wo.Status)
			}
			return nil
		}

		now := s.now().UTC()
		fields := map[string]interface{}{"updated_at": now}
		var entries []*domain.WorkOrderHistory

		if req.ProblemDescription != nil {
			fields["problem_description"] = *req.ProblemDescription
		}
		if req.EstimatedCompletion != nil {
			fields["estimated_completion"] = req.EstimatedCompletion.UTC()
		}
		if req.MechanicID != nil && (wo.MechanicID == nil || *wo.MechanicID != *req.MechanicID) {
			mechanic, err := r.users.GetByID(ctx, *req.MechanicID)
			if err != nil {
				return storeError("load mechanic", "mechanic", *req.MechanicID, err)
			}
			fields["mechanic_id"] = mechanic.ID
			entries = append(entries, s.historyEntry(ctx, id, HistoryMechanicAssigned,
				"Mecânico atribuído: "+mechanic.FullName))
		}

		if req.Status != nil {
			check := domain.CheckTransition(wo.Status, *req.Status)
			if !check.Allowed {
				return invalidState("%s", check.Reason)
			}
			if !check.NoOp {
				fields["status"] = *req.Status
				if check.SetCompletedAt {
					fields["completed_at"] = now
					completed = true
					completedOrder = *wo
				}

				description := "Status alterado para: " + string(*req.Status)
				if req.Notes != "" {
					description += " - " + req.Notes
				}
				entry := s.historyEntry(ctx, id, HistoryStatusChanged, description)
				from, to := wo.Status, *req.Status
				entry.FromStatus = &from
				entry.ToStatus = &to
				entries = append(entries, entry)

				notify := check.NotifyCustomerDefault
				if req.NotifyCustomer != nil {
					notify = *req.NotifyCustomer
				}
				logger.ForWorkOrder(s.logger, wo.ID, wo.OrderNumber).Info("work order status changed",
					zap.String("from", string(from)),
					zap.String("to", string(to)),
					zap.Bool("notify_customer", notify))
			}
		}

		if _, err := r.workOrders.UpdateFields(ctx, id, fields); err != nil {
			return storeError("update work order", "work order", id, err)
		}
		for _, entry := range entries {
			if err := r.history.Append(ctx, entry); err != nil {
				return storeError("append history", "work order history", id, err)
			}
		}

		if completed {
			if err := r.vehicles.RecordService(ctx, completedOrder.VehicleID, now); err != nil {
				return storeError("record vehicle service", "vehicle", completedOrder.VehicleID, err)
			}
			if err := r.customers.AddServiceTotals(ctx, completedOrder.CustomerID, 1, decimal.Zero); err != nil {
				return storeError("update customer totals", "customer", completedOrder.CustomerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// CheckTransition reports whether the order can move to the given status and
// what the client should ask for when it does
func (s *WorkOrderService) CheckTransition(ctx context.Context, id uuid.UUID, to domain.WorkOrderStatus) (*domain.TransitionCheckDTO, error) {
	wo, err := s.workOrders.GetHeader(ctx, id)
	if err != nil {
		return nil, storeError("get work order", "work order", id, err)
	}
	check := domain.CheckTransition(wo.Status, to)
	return &domain.TransitionCheckDTO{
		From:                      wo.Status,
		To:                        to,
		Allowed:                   check.Allowed,
		Reason:                    check.Reason,
		PromptEstimatedCompletion: check.PromptEstimatedCompletion,
		NotifyCustomerDefault:     check.NotifyCustomerDefault,
		SetsCompletedAt:           check.SetCompletedAt,
	}, nil
}

// Delete removes the work order with its lines and history. Orders that
// already have invoices are kept.
func (s *WorkOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.invoices.CountByWorkOrder(ctx, id)
	if err != nil {
		return storeError("count invoices", "invoice", id, err)
	}
	if count > 0 {
		return invalidState("work order has %d invoice(s) and cannot be deleted", count)
	}

	affected, err := s.workOrders.Delete(ctx, id)
	if err != nil {
		return storeError("delete work order", "work order", id, err)
	}
	if affected == 0 {
		return notFound("work order", id)
	}
	s.logger.Info("work order deleted", zap.String("work_order_id", id.String()))
	return nil
}

// mutateLines runs fn inside a transaction on a non-terminal order, then
// recomputes the total and records a history entry
func (s *WorkOrderService) mutateLines(ctx context.Context, id uuid.UUID, description string, fn func(r txRepos) error) (*domain.WorkOrderDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		wo, err := r.workOrders.GetHeader(ctx, id)
		if err != nil {
			return storeError("get work order", "work order", id, err)
		}
		if wo.Status.IsTerminal() {
			return invalidState("work order %s is %s and its items can no longer be changed", wo.OrderNumber, wo.Status)
		}
		if err := fn(r); err != nil {
			return err
		}
		if _, err := r.workOrders.RecalculateTotal(ctx, id); err != nil {
			return storeError("recalculate total", "work order", id, err)
		}
		if err := r.history.Append(ctx, s.historyEntry(ctx, id, HistoryLinesChanged, description)); err != nil {
			return storeError("append history", "work order history", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// AddService appends a catalog service line
func (s *WorkOrderService) AddService(ctx context.Context, id uuid.UUID, in domain.ServiceLineInput) (*domain.WorkOrderDTO, error) {
	v := newValidationError()
	validateServiceLine(v, "service", in)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return s.mutateLines(ctx, id, "Serviço adicionado", func(r txRepos) error {
		return s.addServiceLine(ctx, r, id, in)
	})
}

// RemoveService deletes a service line
func (s *WorkOrderService) RemoveService(ctx context.Context, id, lineID uuid.UUID) (*domain.WorkOrderDTO, error) {
	return s.mutateLines(ctx, id, "Serviço removido", func(r txRepos) error {
		affected, err := r.workOrders.RemoveServiceLine(ctx, id, lineID)
		if err != nil {
			return storeError("remove service line", "service line", lineID, err)
		}
		if affected == 0 {
			return notFound("service line", lineID)
		}
		return nil
	})
}

// AddPart appends a part line, taking it from stock when available
func (s *WorkOrderService) AddPart(ctx context.Context, id uuid.UUID, in domain.PartLineInput) (*domain.WorkOrderDTO, error) {
	v := newValidationError()
	validatePartLine(v, "part", in)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return s.mutateLines(ctx, id, "Peça adicionada", func(r txRepos) error {
		return s.addPartLine(ctx, r, id, in)
	})
}

// RemovePart deletes a part line and returns reserved parts to stock
func (s *WorkOrderService) RemovePart(ctx context.Context, id, lineID uuid.UUID) (*domain.WorkOrderDTO, error) {
	return s.mutateLines(ctx, id, "Peça removida", func(r txRepos) error {
		line, err := r.workOrders.GetPartLine(ctx, id, lineID)
		if err != nil {
			return storeError("get part line", "part line", lineID, err)
		}
		if _, err := r.workOrders.RemovePartLine(ctx, id, lineID); err != nil {
			return storeError("remove part line", "part line", lineID, err)
		}
		if line.InStock {
			if err := r.inventory.AdjustStock(ctx, line.ItemID, line.Quantity); err != nil {
				return storeError("restock part", "inventory item", line.ItemID, err)
			}
		}
		return nil
	})
}

// RecalculateTotal recomputes and stores the order total from its lines
func (s *WorkOrderService) RecalculateTotal(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.workOrders.GetHeader(ctx, id); err != nil {
		return decimal.Zero, storeError("get work order", "work order", id, err)
	}
	total, err := s.workOrders.RecalculateTotal(ctx, id)
	if err != nil {
		return decimal.Zero, storeError("recalculate total", "work order", id, err)
	}
	return total, nil
}

// History returns the order history newest first
func (s *WorkOrderService) History(ctx context.Context, id uuid.UUID) ([]domain.WorkOrderHistoryDTO, error) {
	return s.historyDTOs(ctx, id, s.history.ListByWorkOrder)
}

// Detours returns the status changes into and out of the waiting states,
// oldest first, so reports can tell which detour an order took
func (s *WorkOrderService) Detours(ctx context.Context, id uuid.UUID) ([]domain.WorkOrderHistoryDTO, error) {
	return s.historyDTOs(ctx, id, s.history.ListDetours)
}

func (s *WorkOrderService) historyDTOs(ctx context.Context, id uuid.UUID, load func(context.Context, uuid.UUID) ([]domain.WorkOrderHistory, error)) ([]domain.WorkOrderHistoryDTO, error) {
	if _, err := s.workOrders.GetHeader(ctx, id); err != nil {
		return nil, storeError("get work order", "work order", id, err)
	}
	entries, err := load(ctx, id)
	if err != nil {
		return nil, storeError("list history", "work order history", id, err)
	}
	dtos := make([]domain.WorkOrderHistoryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToWorkOrderHistoryDTO(&entries[i])
	}
	return dtos, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
