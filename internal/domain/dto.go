package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Response DTOs

type CustomerDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	AltPhone      string          `json:"altPhone,omitempty"`
	Email         string          `json:"email,omitempty"`
	TaxID         string          `json:"taxId,omitempty"`
	IDNumber      string          `json:"idNumber,omitempty"`
	DriverLicense string          `json:"driverLicense,omitempty"`
	Address       AddressDTO      `json:"address"`
	BirthDate     *string         `json:"birthDate,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Status        CustomerStatus  `json:"status"`
	TotalServices int             `json:"totalServices"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
	Vehicles      []VehicleDTO    `json:"vehicles,omitempty"`
}

type AddressDTO struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
}

type VehicleDTO struct {
	ID            uuid.UUID     `json:"id"`
	CustomerID    uuid.UUID     `json:"customerId"`
	CustomerName  string        `json:"customerName,omitempty"`
	Brand         string        `json:"brand"`
	Model         string        `json:"model"`
	Year          int           `json:"year"`
	Plate         string        `json:"plate"`
	Color         string        `json:"color,omitempty"`
	FuelType      string        `json:"fuelType,omitempty"`
	Chassis       string        `json:"chassis,omitempty"`
	Mileage       int           `json:"mileage"`
	Status        VehicleStatus `json:"status"`
	LastService   *string       `json:"lastService,omitempty"`
	TotalServices int           `json:"totalServices"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     string        `json:"createdAt"`
}

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        UserRole  `json:"role"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt *string   `json:"lastLoginAt,omitempty"`
}

type CatalogServiceDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category,omitempty"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	EstimatedHours decimal.Decimal `json:"estimatedHours"`
	IsActive       bool            `json:"isActive"`
}

type InventoryItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model,omitempty"`
	CurrentStock int             `json:"currentStock"`
	MinimumStock int             `json:"minimumStock"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Supplier     string          `json:"supplier,omitempty"`
	Location     string          `json:"location,omitempty"`
	StockLevel   StockLevel      `json:"stockLevel"`
	LastUpdated  string          `json:"lastUpdated"`
}

type WorkOrderServiceLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ServiceID   uuid.UUID       `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type WorkOrderPartLineDTO struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"itemId"`
	ItemCode   string          `json:"itemCode"`
	ItemName   string          `json:"itemName"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	InStock    bool            `json:"inStock"`
}

type WorkOrderHistoryDTO struct {
	ID          uuid.UUID        `json:"id"`
	Action      string           `json:"action"`
	Description string           `json:"description,omitempty"`
	FromStatus  *WorkOrderStatus `json:"fromStatus,omitempty"`
	ToStatus    *WorkOrderStatus `json:"toStatus,omitempty"`
	PerformedBy string           `json:"performedBy,omitempty"`
	Timestamp   string           `json:"timestamp"`
}

type WorkOrderDTO struct {
	ID                   uuid.UUID                 `json:"id"`
	OrderNumber          string                    `json:"orderNumber"`
	CustomerID           uuid.UUID                 `json:"customerId"`
	CustomerName         string                    `json:"customerName"`
	CustomerPhone        string                    `json:"customerPhone,omitempty"`
	VehicleID            uuid.UUID                 `json:"vehicleId"`
	VehicleDescription   string                    `json:"vehicleDescription"`
	VehiclePlate         string                    `json:"vehiclePlate"`
	MechanicID           *uuid.UUID                `json:"mechanicId,omitempty"`
	MechanicName         string                    `json:"mechanicName,omitempty"`
	Status               WorkOrderStatus           `json:"status"`
	AvailableTransitions []WorkOrderStatus         `json:"availableTransitions"`
	ProblemDescription   string                    `json:"problemDescription"`
	EstimatedCompletion  *string                   `json:"estimatedCompletion,omitempty"`
	CompletedAt          *string                   `json:"completedAt,omitempty"`
	TotalValue           decimal.Decimal           `json:"totalValue"`
	Services             []WorkOrderServiceLineDTO `json:"services"`
	Parts                []WorkOrderPartLineDTO    `json:"parts"`
	History              []WorkOrderHistoryDTO     `json:"history"`
	CreatedAt            string                    `json:"createdAt"`
	UpdatedAt            string                    `json:"updatedAt"`
}

type InvoiceDTO struct {
	ID             uuid.UUID       `json:"id"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	WorkOrderID    uuid.UUID       `json:"workOrderId"`
	OrderNumber    string          `json:"orderNumber,omitempty"`
	CustomerID     uuid.UUID       `json:"customerId"`
	CustomerName   string          `json:"customerName,omitempty"`
	CreatedByName  string          `json:"createdByName,omitempty"`
	Type           InvoiceType     `json:"invoiceType"`
	Status         InvoiceStatus   `json:"status"`
	IssueDate      string          `json:"issueDate"`
	DueDate        *string         `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	NegativeTotal  bool            `json:"negativeTotal"`
	PaymentMethod  *PaymentMethod  `json:"paymentMethod,omitempty"`
	PaidAt         *string         `json:"paidAt,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      string          `json:"createdAt"`
}

type MonthlySpendingDTO struct {
	Month  string          `json:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount"`
}

type CustomerFinancialSummaryDTO struct {
	CustomerID          uuid.UUID                  `json:"customerId"`
	TotalSpent          decimal.Decimal            `json:"totalSpent"`
	TotalServices       int                        `json:"totalServices"`
	AverageTicket       decimal.Decimal            `json:"averageTicket"`
	ThisYear            decimal.Decimal            `json:"thisYear"`
	ThisMonth           decimal.Decimal            `json:"thisMonth"`
	LastSixMonths       []MonthlySpendingDTO       `json:"lastSixMonths"`
	PaymentDistribution map[string]decimal.Decimal `json:"paymentDistribution"`
	LastPaymentAt       *string                    `json:"lastPaymentAt,omitempty"`
}

type StockAlertDTO struct {
	ItemID       string     `json:"itemId"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	CurrentStock int        `json:"currentStock"`
	MinimumStock int        `json:"minimumStock"`
	Level        StockLevel `json:"level"`
}

type DashboardDTO struct {
	WorkOrdersByStatus map[WorkOrderStatus]int64  `json:"workOrdersByStatus"`
	OpenWorkOrders     int64                      `json:"openWorkOrders"`
	Revenue            decimal.Decimal            `json:"revenue"`
	Outstanding        decimal.Decimal            `json:"outstanding"`
	PaidInvoices       int                        `json:"paidInvoices"`
	AverageTicket      decimal.Decimal            `json:"averageTicket"`
	RevenueByMethod    map[string]decimal.Decimal `json:"revenueByMethod"`
	StockAlerts        []StockAlertDTO            `json:"stockAlerts"`
	CustomerCount      int64                      `json:"customerCount"`
	From               string                     `json:"from"`
	To                 string                     `json:"to"`
}

// PaginatedResponse wraps list endpoints
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Auth DTOs

type SignUpRequest struct {
	Email    string   `json:"email" validate:"required,email,max=255"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	FullName string   `json:"fullName" validate:"required,max=200"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=manager cashier mechanic"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	AccessToken string  `json:"accessToken"`
	TokenType   string  `json:"tokenType"`
	ExpiresAt   string  `json:"expiresAt"`
	User        UserDTO `json:"user"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// Request DTOs

type CreateCustomerRequest struct {
	Name          string         `json:"name" validate:"required,max=200"`
	Phone         string         `json:"phone" validate:"required,max=30"`
	AltPhone      string         `json:"altPhone,omitempty" validate:"max=30"`
	Email         string         `json:"email,omitempty" validate:"omitempty,email,max=255"`
	TaxID         string         `json:"taxId,omitempty" validate:"max=20"`
	IDNumber      string         `json:"idNumber,omitempty" validate:"max=20"`
	DriverLicense string         `json:"driverLicense,omitempty" validate:"max=20"`
	Address       AddressDTO     `json:"address"`
	BirthDate     *time.Time     `json:"birthDate,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Status        CustomerStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type UpdateCustomerRequest = CreateCustomerRequest

type CreateVehicleRequest struct {
	CustomerID uuid.UUID     `json:"customerId" validate:"required"`
	Brand      string        `json:"brand" validate:"required,max=50"`
	Model      string        `json:"model" validate:"required,max=50"`
	Year       int           `json:"year" validate:"required,gte=1900,lte=2100"`
	Plate      string        `json:"plate" validate:"required,max=10"`
	Color      string        `json:"color,omitempty" validate:"max=30"`
	FuelType   string        `json:"fuelType,omitempty" validate:"max=20"`
	Chassis    string        `json:"chassis,omitempty" validate:"max=30"`
	Mileage    int           `json:"mileage" validate:"gte=0"`
	Status     VehicleStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive maintenance"`
	Notes      string        `json:"notes,omitempty"`
}

type UpdateVehicleRequest = CreateVehicleRequest

type CreateCatalogServiceRequest struct {
	Name           string          `json:"name" validate:"required,max=120"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category,omitempty" validate:"max=60"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	EstimatedHours decimal.Decimal `json:"estimatedHours"`
	IsActive       *bool           `json:"isActive,omitempty"`
}

type CreateInventoryItemRequest struct {
	Code         string          `json:"code" validate:"required,max=40"`
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty" validate:"max=60"`
	Brand        string          `json:"brand,omitempty" validate:"max=60"`
	Model        string          `json:"model,omitempty" validate:"max=60"`
	CurrentStock int             `json:"currentStock" validate:"gte=0"`
	MinimumStock int             `json:"minimumStock" validate:"gte=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Supplier     string          `json:"supplier,omitempty" validate:"max=120"`
	Location     string          `json:"location,omitempty" validate:"max=60"`
}

type UpdateInventoryItemRequest = CreateInventoryItemRequest

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"max=200"`
}

// ServiceLineInput adds a catalog service. UnitPrice defaults to the catalog base price.
type ServiceLineInput struct {
	ServiceID uuid.UUID        `json:"serviceId" validate:"required"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

// PartLineInput adds an inventory part. UnitPrice defaults to the item price.
type PartLineInput struct {
	ItemID    uuid.UUID        `json:"itemId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type CreateWorkOrderRequest struct {
	CustomerID          uuid.UUID          `json:"customerId"`
	VehicleID           uuid.UUID          `json:"vehicleId"`
	MechanicID          *uuid.UUID         `json:"mechanicId,omitempty"`
	ProblemDescription  string             `json:"problemDescription" validate:"max=5000"`
	EstimatedCompletion *time.Time         `json:"estimatedCompletion,omitempty"`
	Services            []ServiceLineInput `json:"services" validate:"dive"`
	Parts               []PartLineInput    `json:"parts,omitempty" validate:"dive"`
}

// UpdateWorkOrderRequest is a partial update; nil fields are left untouched
type UpdateWorkOrderRequest struct {
	MechanicID          *uuid.UUID       `json:"mechanicId,omitempty"`
	ProblemDescription  *string          `json:"problemDescription,omitempty" validate:"omitempty,max=5000"`
	EstimatedCompletion *time.Time       `json:"estimatedCompletion,omitempty"`
	Status              *WorkOrderStatus `json:"status,omitempty"`
	Notes               string           `json:"notes,omitempty" validate:"max=1000"`
	NotifyCustomer      *bool            `json:"notifyCustomer,omitempty"`
}

// ChangesDetails reports whether the request edits anything besides the status
func (r *UpdateWorkOrderRequest) ChangesDetails() bool {
	return r.MechanicID != nil || r.ProblemDescription != nil || r.EstimatedCompletion != nil
}

type CreateInvoiceRequest struct {
	WorkOrderID           uuid.UUID        `json:"workOrderId"`
	CustomerID            uuid.UUID        `json:"customerId"`
	Type                  InvoiceType      `json:"invoiceType" validate:"required,oneof=invoice receipt"`
	IssueDate             *time.Time       `json:"issueDate,omitempty"`
	DueDate               *time.Time       `json:"dueDate,omitempty"`
	Subtotal              *decimal.Decimal `json:"subtotal,omitempty"`
	UseWorkOrderTotal     bool             `json:"useWorkOrderTotal,omitempty"`
	TaxAmount             *decimal.Decimal `json:"taxAmount,omitempty"`
	DiscountAmount        *decimal.Decimal `json:"discountAmount,omitempty"`
	TotalAmount           *decimal.Decimal `json:"totalAmount,omitempty"`
	AllowNegativeSubtotal bool             `json:"allowNegativeSubtotal,omitempty"`
	PaymentMethod         *PaymentMethod   `json:"paymentMethod,omitempty"`
	Notes                 string           `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateInvoiceRequest is a partial update; the total is re-derived
type UpdateInvoiceRequest struct {
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	Subtotal       *decimal.Decimal `json:"subtotal,omitempty"`
	TaxAmount      *decimal.Decimal `json:"taxAmount,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`
	Notes          *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type MarkPaidRequest struct {
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash card bank_transfer pix"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
}

// TransitionCheckDTO tells the client what a status change requires
type TransitionCheckDTO struct {
	From                      WorkOrderStatus `json:"from"`
	To                        WorkOrderStatus `json:"to"`
	Allowed                   bool            `json:"allowed"`
	Reason                    string          `json:"reason,omitempty"`
	PromptEstimatedCompletion bool            `json:"promptEstimatedCompletion"`
	NotifyCustomerDefault     bool            `json:"notifyCustomerDefault"`
	SetsCompletedAt           bool            `json:"setsCompletedAt"`
}
