package db

import (
	"fmt"
	"time"
)

// Product statuses. Only publish, soon and full are visible in the shop.
const (
	ProductStatusDraft   = "draft"
	ProductStatusPublish = "publish"
	ProductStatusSoon    = "soon"
	ProductStatusFull    = "full"
)

// VisibleProductStatuses are the statuses listed publicly.
var VisibleProductStatuses = []string{ProductStatusPublish, ProductStatusSoon, ProductStatusFull}

// ProductCategory groups products in the shop.
type ProductCategory struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null"`
	Slug string `gorm:"size:100;uniqueIndex;not null"`
}

// TableName avoids clashing with the blog categories table.
func (ProductCategory) TableName() string {
	return "product_categories"
}

// Product is a digital product sold in the shop.
type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:200;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	ImagePath   string
	PricePence  int64  `gorm:"not null"`
	Status      string `gorm:"size:20;index;not null"`
	IsActive    bool   `gorm:"index"`
	Featured    bool
	Order       int   `gorm:"column:sort_order;not null"`
	CategoryID  *uint `gorm:"index"`
	Category    *ProductCategory
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order is a customer purchase. OrderID is the public identifier.
type Order struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"size:64;uniqueIndex;not null"`
	Email     string `gorm:"size:254;not null"`
	UserID    *uint  `gorm:"index"`
	User      *User
	Paid      bool `gorm:"index"`
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPence sums the paid price of every line.
func (o Order) TotalPence() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotalPence()
	}
	return total
}

// OrderItem is one product line in an order.
type OrderItem struct {
	ID                 uint `gorm:"primaryKey"`
	OrderID            uint `gorm:"index;not null"`
	ProductID          uint `gorm:"index;not null"`
	Product            Product
	PricePaidPence     int64 `gorm:"not null"`
	Quantity           int   `gorm:"not null"`
	DownloadsRemaining int
}

// LineTotalPence is price times quantity.
func (i OrderItem) LineTotalPence() int64 {
	return i.PricePaidPence * int64(i.Quantity)
}

// FormatPence renders an amount in minor units with a currency symbol.
func FormatPence(symbol string, pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, pence/100, pence%100)
}
