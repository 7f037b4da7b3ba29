package enum

// ── Group A: State machines ──

// Dine-in order lifecycle (in-memory only).
const (
	DineInStatusActive    = "active"
	DineInStatusCompleted = "completed"
	DineInStatusCanceled  = "canceled"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
)

// Remote order lifecycle (CHECK constrained in DB).
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ── Group B: Roles (CHECK constrained in DB) ──

const (
	UserRoleCustomer = "customer"
	UserRoleStaff    = "staff"
	UserRoleAdmin    = "admin"
)

// ── Group C: Event types (no DB constraint) ──

const (
	EventDineInOrderCreated   = "dinein.order.created"
	EventDineInOrderUpdated   = "dinein.order.updated"
	EventDineInOrderCompleted = "dinein.order.completed"
	EventDineInOrderCanceled  = "dinein.order.canceled"
	EventOrderPlaced          = "order.placed"
	EventOrderStatusChanged   = "order.status_changed"
	EventMenuChanged          = "menu.changed"
)
