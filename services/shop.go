package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/werta666/jifen-go/models"
	"github.com/werta666/jifen-go/utils"
)

// ProductView is the shop listing read model.
type ProductView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconClass   string `json:"icon_class"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	StockStatus string `json:"stock_status"`
	Available   bool   `json:"available"`
	SalesCount  int    `json:"sales_count"`
	SortOrder   int    `json:"sort_order"`
}

// PurchaseResult summarizes a completed purchase for the response payload.
type PurchaseResult struct {
	OrderNo         string `json:"order_no"`
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	TotalPrice      int    `json:"total_price"`
	RemainingPoints int    `json:"remaining_points"`
}

// ProductInput is the admin-facing create/update payload. Description may
// contain HTML and is sanitized before storage.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconClass   string `json:"icon_class"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// Products lists all products in display order.
func (s *Service) Products() ([]ProductView, error) {
	var products []models.ShopProduct
	if err := s.db.Order("sort_order, id").Find(&products).Error; err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		p := &products[i]
		views = append(views, ProductView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			IconClass:   p.IconClass,
			Price:       p.Price,
			Stock:       p.Stock,
			StockStatus: p.StockStatus(),
			Available:   p.Available(),
			SalesCount:  p.SalesCount,
			SortOrder:   p.SortOrder,
		})
	}
	return views, nil
}

// Purchase spends points on a product: the debit goes through the same
// clamped spent-counter path as every other spend, and the stock decrement
// plus order row land in the same transaction. Balance and stock checks are
// rejected up front; nothing is applied partially.
func (s *Service) Purchase(user Identity, productID uint, quantity int, notes string) (*PurchaseResult, error) {
	if productID == 0 || quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	result := &PurchaseResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.ShopProduct
		if err := lockForUpdate(tx).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if !product.IsActive {
			return ErrProductNotFound
		}

		u, err := ensureUser(tx, user)
		if err != nil {
			return err
		}
		total, err := totalPoints(tx, user.ID)
		if err != nil {
			return err
		}

		totalPrice := product.Price * quantity
		if total-u.SpentPoints < totalPrice {
			return ErrInsufficientPoints
		}
		if product.Stock < quantity {
			return ErrOutOfStock
		}

		if _, err := applyAdjustment(tx, user, -totalPrice); err != nil {
			return err
		}

		product.Stock -= quantity
		product.SalesCount += quantity
		if err := tx.Save(&product).Error; err != nil {
			return err
		}

		order := models.ShopOrder{
			OrderNo:     uuid.NewString(),
			UserID:      user.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
			TotalPrice:  totalPrice,
			Status:      models.OrderStatusCompleted,
			Notes:       utils.Sanitize(notes),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var refreshed models.User
		if err := tx.First(&refreshed, user.ID).Error; err != nil {
			return err
		}

		result.OrderNo = order.OrderNo
		result.ProductName = product.Name
		result.Quantity = quantity
		result.TotalPrice = totalPrice
		result.RemainingPoints = total - refreshed.SpentPoints
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(user, "jifen_shop_purchase", map[string]any{
		"order_no":    result.OrderNo,
		"product":     result.ProductName,
		"quantity":    result.Quantity,
		"total_price": result.TotalPrice,
	})
	return result, nil
}

// Orders returns the user's most recent orders, newest first.
func (s *Service) Orders(user Identity, limit int) ([]models.ShopOrder, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var orders []models.ShopOrder
	err := s.db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// AdminOrders returns recent orders across all users.
func (s *Service) AdminOrders(limit int) ([]models.ShopOrder, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var orders []models.ShopOrder
	err := s.db.Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus moves an order between completed/pending/cancelled.
func (s *Service) UpdateOrderStatus(actor Identity, orderID uint, status string) error {
	switch status {
	case models.OrderStatusCompleted, models.OrderStatusPending, models.OrderStatusCancelled:
	default:
		return ErrInvalidStatus
	}

	res := s.db.Model(&models.ShopOrder{}).Where("id = ?", orderID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	s.audit.Log(actor, "jifen_shop_order_status", map[string]any{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

// DeleteOrder removes an order row. Points already spent are not refunded.
func (s *Service) DeleteOrder(actor Identity, orderID uint) error {
	res := s.db.Delete(&models.ShopOrder{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	s.audit.Log(actor, "jifen_shop_order_delete", map[string]any{"order_id": orderID})
	return nil
}

// AddProduct creates a shop product.
func (s *Service) AddProduct(actor Identity, in ProductInput) (*models.ShopProduct, error) {
	if in.Name == "" || in.Price < 0 || in.Stock < 0 {
		return nil, ErrInvalidQuantity
	}

	product := models.ShopProduct{
		Name:        in.Name,
		Description: utils.Sanitize(in.Description),
		IconClass:   in.IconClass,
		Price:       in.Price,
		Stock:       in.Stock,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, err
	}

	s.audit.Log(actor, "jifen_shop_product_add", map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price,
	})
	return &product, nil
}

// UpdateProduct applies an admin edit to an existing product.
func (s *Service) UpdateProduct(actor Identity, productID uint, in ProductInput) (*models.ShopProduct, error) {
	var product models.ShopProduct
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = utils.Sanitize(in.Description)
	}
	if in.IconClass != "" {
		product.IconClass = in.IconClass
	}
	if in.Price >= 0 {
		product.Price = in.Price
	}
	if in.Stock >= 0 {
		product.Stock = in.Stock
	}
	product.SortOrder = in.SortOrder
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := s.db.Save(&product).Error; err != nil {
		return nil, err
	}

	s.audit.Log(actor, "jifen_shop_product_update", map[string]any{"product_id": product.ID})
	return &product, nil
}

// DeleteProduct removes a product; existing orders keep their denormalized
// product name.
func (s *Service) DeleteProduct(actor Identity, productID uint) error {
	res := s.db.Delete(&models.ShopProduct{}, productID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}

	s.audit.Log(actor, "jifen_shop_product_delete", map[string]any{"product_id": productID})
	return nil
}

// CreateSampleProducts seeds a few demo products for a fresh deployment.
// No-op when any product already exists.
func (s *Service) CreateSampleProducts(actor Identity) (int, error) {
	var count int64
	if err := s.db.Model(&models.ShopProduct{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	samples := []models.ShopProduct{
		{Name: "VIP Membership", Description: "30 days of VIP perks, ad-free browsing", IconClass: "fa-crown", Price: 500, Stock: 999, SortOrder: 1, IsActive: true},
		{Name: "Avatar Frame", Description: "Golden avatar frame", IconClass: "fa-user-circle", Price: 200, Stock: 50, SortOrder: 2, IsActive: true},
		{Name: "Points Chest", Description: "Random 50-200 bonus points", IconClass: "fa-treasure-chest", Price: 80, Stock: 100, SortOrder: 3, IsActive: true},
	}
	if err := s.db.Create(&samples).Error; err != nil {
		return 0, err
	}

	s.audit.Log(actor, "jifen_shop_create_sample", map[string]any{"count": len(samples)})
	return len(samples), nil
}
