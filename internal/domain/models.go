package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseModel with common fields. IDs are generated in Go so the same models
// work on PostgreSQL and SQLite.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the caller did not
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a person or company bringing vehicles to the shop
type Customer struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Phone         string          `gorm:"type:varchar(30);not null"`
	AltPhone      string          `gorm:"type:varchar(30);column:alt_phone"`
	Email         string          `gorm:"type:varchar(255);index"`
	TaxID         string          `gorm:"type:varchar(20);column:tax_id;index"`
	IDNumber      string          `gorm:"type:varchar(20);column:id_number"`
	DriverLicense string          `gorm:"type:varchar(20);column:driver_license"`
	Street        string          `gorm:"type:varchar(200)"`
	Number        string          `gorm:"type:varchar(20)"`
	Complement    string          `gorm:"type:varchar(100)"`
	Neighborhood  string          `gorm:"type:varchar(100)"`
	City          string          `gorm:"type:varchar(100)"`
	State         string          `gorm:"type:varchar(2)"`
	PostalCode    string          `gorm:"type:varchar(10);column:postal_code"`
	BirthDate     *time.Time      `gorm:"type:date;column:birth_date"`
	Notes         string          `gorm:"type:text"`
	Status        CustomerStatus  `gorm:"type:varchar(20);not null;default:'active';index"`
	TotalServices int             `gorm:"not null;default:0;column:total_services"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:total_spent"`
	Vehicles      []Vehicle       `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// VehicleStatus represents the status of a vehicle
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusInactive    VehicleStatus = "inactive"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// Vehicle belongs to a customer; Plate is unique within the shop
type Vehicle struct {
	BaseModel
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer      *Customer     `gorm:"foreignKey:CustomerID"`
	Brand         string        `gorm:"type:varchar(50);not null"`
	Model         string        `gorm:"type:varchar(50);not null"`
	Year          int           `gorm:"not null"`
	Plate         string        `gorm:"type:varchar(10);not null;uniqueIndex"`
	Color         string        `gorm:"type:varchar(30)"`
	FuelType      string        `gorm:"type:varchar(20);column:fuel_type"`
	Chassis       string        `gorm:"type:varchar(30)"`
	Mileage       int           `gorm:"not null;default:0"`
	Status        VehicleStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	LastService   *time.Time    `gorm:"column:last_service"`
	TotalServices int           `gorm:"not null;default:0;column:total_services"`
	Notes         string        `gorm:"type:text"`
}

// UserRole is the staff role used for route gating
type UserRole string

const (
	RoleManager  UserRole = "manager"
	RoleCashier  UserRole = "cashier"
	RoleMechanic UserRole = "mechanic"
	// RoleSystem is assigned to API key callers, never stored
	RoleSystem UserRole = "system"
)

// IsValid reports whether r is a role that can be stored on a user
func (r UserRole) IsValid() bool {
	switch r {
	case RoleManager, RoleCashier, RoleMechanic:
		return true
	}
	return false
}

// User is a staff member. Mechanics are users with RoleMechanic.
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName     string     `gorm:"type:varchar(200);not null;column:full_name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'mechanic';index"`
	PasswordHash string     `gorm:"type:varchar(100);not null;column:password_hash"`
	IsActive     bool       `gorm:"not null;column:is_active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

// CatalogService is an entry in the shop's service catalog
type CatalogService struct {
	BaseModel
	Name           string          `gorm:"type:varchar(120);not null;index"`
	Description    string          `gorm:"type:text"`
	Category       string          `gorm:"type:varchar(60);index"`
	BasePrice      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:base_price"`
	EstimatedHours decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0;column:estimated_hours"`
	IsActive       bool            `gorm:"not null;column:is_active"`
}

func (CatalogService) TableName() string { return "services" }

// InventoryItem is a stocked part
type InventoryItem struct {
	BaseModel
	Code         string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Description  string          `gorm:"type:text"`
	Category     string          `gorm:"type:varchar(60);index"`
	Brand        string          `gorm:"type:varchar(60)"`
	Model        string          `gorm:"type:varchar(60)"`
	CurrentStock int             `gorm:"not null;default:0;column:current_stock"`
	MinimumStock int             `gorm:"not null;default:0;column:minimum_stock"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:unit_price"`
	Supplier     string          `gorm:"type:varchar(120)"`
	Location     string          `gorm:"type:varchar(60)"`
}

func (InventoryItem) TableName() string { return "inventory" }

// WorkOrder is a service ticket for one vehicle
type WorkOrder struct {
	BaseModel
	OrderNumber         string                 `gorm:"type:varchar(30);not null;uniqueIndex;column:order_number"`
	CustomerID          uuid.UUID              `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer            *Customer              `gorm:"foreignKey:CustomerID"`
	VehicleID           uuid.UUID              `gorm:"type:uuid;not null;index;column:vehicle_id"`
	Vehicle             *Vehicle               `gorm:"foreignKey:VehicleID"`
	MechanicID          *uuid.UUID             `gorm:"type:uuid;index;column:mechanic_id"`
	Mechanic            *User                  `gorm:"foreignKey:MechanicID"`
	CreatedByID         *uuid.UUID             `gorm:"type:uuid;column:created_by_id"`
	Status              WorkOrderStatus        `gorm:"type:varchar(30);not null;default:'Aguardando';index"`
	ProblemDescription  string                 `gorm:"type:text;not null;column:problem_description"`
	EstimatedCompletion *time.Time             `gorm:"column:estimated_completion;index"`
	CompletedAt         *time.Time             `gorm:"column:completed_at"`
	TotalAmount         decimal.Decimal        `gorm:"type:numeric(12,2);not null;default:0;column:total_amount"`
	Services            []WorkOrderServiceLine `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
	Parts               []WorkOrderPartLine    `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
	History             []WorkOrderHistory     `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
}

// WorkOrderServiceLine is a catalog service performed on a work order
type WorkOrderServiceLine struct {
	BaseModel
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index;column:work_order_id"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null;column:service_id"`
	Service     *CatalogService `gorm:"foreignKey:ServiceID"`
	Position    int             `gorm:"not null;default:0"`
	Quantity    decimal.Decimal `gorm:"type:numeric(8,2);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null;column:total_price"`
}

func (WorkOrderServiceLine) TableName() string { return "work_order_services" }

// WorkOrderPartLine is an inventory part used on a work order
type WorkOrderPartLine struct {
	BaseModel
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index;column:work_order_id"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;column:item_id"`
	Item        *InventoryItem  `gorm:"foreignKey:ItemID"`
	Position    int             `gorm:"not null;default:0"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null;column:total_price"`
	InStock     bool            `gorm:"not null;column:in_stock"`
}

func (WorkOrderPartLine) TableName() string { return "work_order_parts" }

// WorkOrderHistory is an append-only audit entry. FromStatus/ToStatus are set
// for status changes only.
type WorkOrderHistory struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	WorkOrderID   uuid.UUID        `gorm:"type:uuid;not null;index;column:work_order_id"`
	Action        string           `gorm:"type:varchar(60);not null"`
	Description   string           `gorm:"type:text"`
	FromStatus    *WorkOrderStatus `gorm:"type:varchar(30);column:from_status"`
	ToStatus      *WorkOrderStatus `gorm:"type:varchar(30);column:to_status"`
	PerformedByID *uuid.UUID       `gorm:"type:uuid;column:performed_by_id"`
	PerformedBy   *User            `gorm:"foreignKey:PerformedByID"`
	PerformedName string           `gorm:"type:varchar(200);column:performed_name"`
	CreatedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (WorkOrderHistory) TableName() string { return "work_order_history" }

func (h *WorkOrderHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// InvoiceType distinguishes a bill from proof of payment
type InvoiceType string

const (
	InvoiceTypeInvoice InvoiceType = "invoice"
	InvoiceTypeReceipt InvoiceType = "receipt"
)

// PaymentMethod is a closed set of payment methods
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPix          PaymentMethod = "pix"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodPix:
		return true
	}
	return false
}

// Invoice is an invoice or receipt issued against a work order
type Invoice struct {
	BaseModel
	InvoiceNumber  string          `gorm:"type:varchar(30);not null;uniqueIndex;column:invoice_number"`
	WorkOrderID    uuid.UUID       `gorm:"type:uuid;not null;index;column:work_order_id"`
	WorkOrder      *WorkOrder      `gorm:"foreignKey:WorkOrderID"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID"`
	CreatedByID    *uuid.UUID      `gorm:"type:uuid;column:created_by_id"`
	CreatedBy      *User           `gorm:"foreignKey:CreatedByID"`
	Type           InvoiceType     `gorm:"type:varchar(20);not null;column:invoice_type;index"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	IssueDate      time.Time       `gorm:"not null;column:issue_date;index"`
	DueDate        *time.Time      `gorm:"column:due_date"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:total_amount"`
	PaymentMethod  *PaymentMethod  `gorm:"type:varchar(20);column:payment_method"`
	PaidAt         *time.Time      `gorm:"column:paid_at"`
	Notes          string          `gorm:"type:text"`
}

// NumberSequence tracks the last number handed out per document kind and year
type NumberSequence struct {
	Kind         string    `gorm:"type:varchar(20);primaryKey"`
	Year         int       `gorm:"primaryKey"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Session is a signed-in staff session referenced by the token's jti
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id"`
	ExpiresAt time.Time `gorm:"not null;index;column:expires_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// PasswordResetToken stores the SHA-256 of a single-use reset token
type PasswordResetToken struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id"`
	TokenHash string     `gorm:"type:varchar(64);not null;uniqueIndex;column:token_hash"`
	ExpiresAt time.Time  `gorm:"not null;index;column:expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at"`
}
