package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/mail"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderEmailMissing = errors.New("order email is required")
	ErrOrderEmpty        = errors.New("order has no items")
)

// OrderMailConfig holds the addresses used for order emails.
type OrderMailConfig struct {
	From  string
	Admin string
}

// OrderService manages orders and their notification emails.
type OrderService struct {
	db       *gorm.DB
	settings *SettingsService
	sender   mail.Sender
	cfg      OrderMailConfig
}

// NewOrderService creates an OrderService instance.
func NewOrderService(gdb *gorm.DB, settings *SettingsService, sender mail.Sender, cfg OrderMailConfig) *OrderService {
	if strings.TrimSpace(cfg.Admin) == "" {
		cfg.Admin = cfg.From
	}
	return &OrderService{db: gdb, settings: settings, sender: sender, cfg: cfg}
}

// OrderLineInput is one product line of a new order.
type OrderLineInput struct {
	ProductID uint
	Quantity  int
}

// Create records an unpaid order at the products' current prices.
func (s *OrderService) Create(email string, userID *uint, lines []OrderLineInput) (*db.Order, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrOrderEmailMissing
	}
	if len(lines) == 0 {
		return nil, ErrOrderEmpty
	}

	order := db.Order{
		OrderID: uuid.NewString(),
		Email:   email,
		UserID:  userID,
	}
	for _, line := range lines {
		var product db.Product
		if err := s.db.First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		order.Items = append(order.Items, db.OrderItem{
			ProductID:          product.ID,
			PricePaidPence:     product.PricePence,
			Quantity:           quantity,
			DownloadsRemaining: 5,
		})
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Get loads an order with its items, products and user.
func (s *OrderService) Get(id uint) (*db.Order, error) {
	var order db.Order
	if err := s.db.Preload("Items.Product").Preload("User").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// PaidForUser lists a customer's paid orders, newest first.
func (s *OrderService) PaidForUser(userID uint) ([]db.Order, error) {
	var orders []db.Order
	err := s.db.Preload("Items.Product").
		Where("user_id = ? AND paid = ?", userID, true).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	return orders, err
}

// MarkPaid flags an order as paid and sends its emails the first time.
func (s *OrderService) MarkPaid(ctx context.Context, id uint) (*db.Order, error) {
	result := s.db.Model(&db.Order{}).Where("id = ? AND paid = ?", id, false).Update("paid", true)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		if err := s.SendConfirmation(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.Get(id)
}

type orderEmailItem struct {
	Name               string
	Quantity           int
	Price              string
	DownloadsRemaining int
}

// SendConfirmation emails the customer confirmation and the admin
// notification. Failures are logged with the order identifier and returned.
func (s *OrderService) SendConfirmation(ctx context.Context, id uint) error {
	order, err := s.Get(id)
	if err != nil {
		return err
	}

	site := s.settings.SiteOrDefault()
	siteURL := strings.TrimRight(site.SiteURL, "/")

	items := make([]orderEmailItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderEmailItem{
			Name:               item.Product.Title,
			Quantity:           item.Quantity,
			Price:              db.FormatPence(site.CurrencySymbol, item.LineTotalPence()),
			DownloadsRemaining: item.DownloadsRemaining,
		})
	}

	firstName, customerName := "", "Guest"
	if order.User != nil {
		firstName = order.User.FirstName
		if name := order.User.FullName(); name != "" {
			customerName = name
		}
	}

	common := map[string]any{
		"OrderID":      order.OrderID,
		"Email":        order.Email,
		"Items":        items,
		"Total":        db.FormatPence(site.CurrencySymbol, order.TotalPence()),
		"DateCreated":  order.CreatedAt.Format("2006-01-02 15:04:05"),
		"BusinessName": site.BusinessName,
		"SiteURL":      siteURL,
		"SupportEmail": site.SupportEmail,
	}

	customer := withValues(common, map[string]any{
		"FirstName":    firstName,
		"LoginURL":     siteURL + "/accounts/login",
		"DashboardURL": siteURL + "/accounts/dashboard",
	})
	if err := s.send(ctx, "order_confirmation.html", fmt.Sprintf("Order Confirmation #%s", order.OrderID), order.Email, customer); err != nil {
		log.Printf("failed to send order confirmation email for order %s: %v", order.OrderID, err)
		return fmt.Errorf("order %s confirmation: %w", order.OrderID, err)
	}
	log.Printf("order confirmation email sent for order %s to %s", order.OrderID, order.Email)

	admin := withValues(common, map[string]any{
		"CustomerName":  customerName,
		"CustomerEmail": order.Email,
		"AdminURL":      fmt.Sprintf("%s/admin/api/orders/%d", siteURL, order.ID),
	})
	if err := s.send(ctx, "admin_new_order.html", fmt.Sprintf("New Order #%s", order.OrderID), s.cfg.Admin, admin); err != nil {
		log.Printf("failed to send admin notification for order %s: %v", order.OrderID, err)
		return fmt.Errorf("order %s admin notification: %w", order.OrderID, err)
	}
	log.Printf("admin notification sent for order %s", order.OrderID)
	return nil
}

func (s *OrderService) send(ctx context.Context, template, subject, to string, data map[string]any) error {
	if s.sender == nil {
		return errors.New("email sender not configured")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("email recipient missing")
	}

	htmlBody, textBody, err := mail.Render(template, data)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, mail.Message{
		From:    s.cfg.From,
		To:      []string{to},
		Subject: subject,
		Text:    textBody,
		HTML:    htmlBody,
	})
}

func withValues(base, extra map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
