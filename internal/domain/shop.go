package domain

import "time"

// Order status values written by the storefront and the admin panel.
// Transitions are admin-driven and intentionally unconstrained, the
// column stays free text.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// Design request status values.
const (
	DesignStatusPending    = "pending"
	DesignStatusInProgress = "in_progress"
	DesignStatusCompleted  = "completed"
	DesignStatusRejected   = "rejected"
)

// Customer is a shopper account. Operators live in SysOpr.
type Customer struct {
	ID        int64     `json:"id,string" form:"id"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Password  string    `json:"-" form:"password"`
	FullName  string    `json:"full_name" form:"full_name"`
	Phone     string    `gorm:"size:32" json:"phone" form:"phone"`
	Status    string    `gorm:"size:16" json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Product is a catalog item. Colors, sizes and features are variant
// lists serialized as JSON text columns.
type Product struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Description string    `gorm:"size:4096" json:"description" form:"description"`
	Price       float64   `json:"price" form:"price"`
	ImageURL    string    `gorm:"size:1024" json:"image_url" form:"image_url"`
	Category    string    `gorm:"index;size:64" json:"category" form:"category"`
	Colors      []string  `gorm:"serializer:json" json:"colors" form:"colors"`
	Sizes       []string  `gorm:"serializer:json" json:"sizes" form:"sizes"`
	Features    []string  `gorm:"serializer:json" json:"features" form:"features"`
	Stock       int       `json:"stock" form:"stock"`
	IsFeatured  bool      `json:"is_featured" form:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// CartItem is one (product, color, size) selection for one shopper.
// The composite unique index backs the re-add-increments-quantity rule.
type CartItem struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `gorm:"uniqueIndex:idx_cart_user_variant" json:"user_id,string"`
	ProductID int64     `gorm:"uniqueIndex:idx_cart_user_variant" json:"product_id,string"`
	Quantity  int       `json:"quantity"`
	Color     string    `gorm:"size:64;uniqueIndex:idx_cart_user_variant" json:"color"`
	Size      string    `gorm:"size:32;uniqueIndex:idx_cart_user_variant" json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Address is a shipping address captured at checkout. One row per
// checkout attempt, never reused across orders.
type Address struct {
	ID           int64     `json:"id,string"`
	UserID       int64     `gorm:"index" json:"user_id,string"`
	FullName     string    `json:"full_name" form:"full_name"`
	Phone        string    `gorm:"size:32" json:"phone" form:"phone"`
	AddressLine1 string    `json:"address_line1" form:"address_line1"`
	AddressLine2 string    `json:"address_line2" form:"address_line2"`
	City         string    `gorm:"size:128" json:"city" form:"city"`
	State        string    `gorm:"size:128" json:"state" form:"state"`
	PostalCode   string    `gorm:"size:16" json:"postal_code" form:"postal_code"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Address) TableName() string {
	return "addresses"
}

// Order is the header of a placed order. CheckoutRef is the client
// supplied idempotency key; the unique index makes a double submit
// resolve to a single order.
type Order struct {
	ID          int64       `json:"id,string"`
	UserID      int64       `gorm:"index" json:"user_id,string"`
	AddressID   int64       `gorm:"index" json:"address_id,string"`
	CheckoutRef string      `gorm:"size:64;uniqueIndex" json:"checkout_ref"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `gorm:"index;size:32" json:"status"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem captures the unit price at order time, decoupled from the
// live product price.
type OrderItem struct {
	ID        int64     `json:"id,string"`
	OrderID   int64     `gorm:"index" json:"order_id,string"`
	ProductID int64     `gorm:"index" json:"product_id,string"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Color     string    `gorm:"size:64" json:"color"`
	Size      string    `gorm:"size:32" json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Review is one shopper's rating of one product.
type Review struct {
	ID         int64     `json:"id,string"`
	UserID     int64     `gorm:"uniqueIndex:idx_review_user_product" json:"user_id,string"`
	ProductID  int64     `gorm:"uniqueIndex:idx_review_user_product" json:"product_id,string"`
	Rating     int       `json:"rating"`
	ReviewText string    `gorm:"size:4096" json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// DesignRequest is a custom adaptive-clothing design request.
// Requirements is a free-form document supplied by the shopper.
type DesignRequest struct {
	ID           int64             `json:"id,string"`
	UserID       int64             `gorm:"index" json:"user_id,string"`
	Description  string            `gorm:"size:4096" json:"description"`
	Requirements map[string]string `gorm:"serializer:json" json:"requirements"`
	Status       string            `gorm:"index;size:32" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (DesignRequest) TableName() string {
	return "design_requests"
}
