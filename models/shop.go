package models

import "time"

// Order lifecycle states.
const (
	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
)

// ShopProduct is a points-shop item managed by administrators.
// Description may contain HTML and is sanitized before storage.
type ShopProduct struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	IconClass   string    `gorm:"size:64" json:"icon_class"`
	Price       int       `gorm:"not null;default:0" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	SalesCount  int       `gorm:"not null;default:0" json:"sales_count"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Available reports whether the product can currently be purchased.
func (p *ShopProduct) Available() bool {
	return p.IsActive && p.Stock > 0
}

// StockStatus returns the display label used by the shop front-end.
func (p *ShopProduct) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return "out_of_stock"
	case p.Stock <= 10:
		return "low_stock"
	default:
		return "in_stock"
	}
}

// ShopOrder records a completed points purchase. Product name and unit price
// are denormalized so order history survives product edits and deletions.
type ShopOrder struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNo     string    `gorm:"size:36;not null;uniqueIndex" json:"order_no"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	ProductID   uint      `gorm:"index" json:"product_id"`
	ProductName string    `gorm:"size:100;not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int       `gorm:"not null" json:"unit_price"`
	TotalPrice  int       `gorm:"not null" json:"total_price"`
	Status      string    `gorm:"size:16;not null;default:completed" json:"status"`
	Notes       string    `gorm:"size:255" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
