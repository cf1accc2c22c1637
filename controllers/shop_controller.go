package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// ShopController handles the points shop: listing, purchase, order history
// and the admin management surface.
type ShopController struct {
	svc *services.Service
}

// NewShopController creates a new controller instance.
func NewShopController(svc *services.Service) *ShopController {
	return &ShopController{svc: svc}
}

// Products lists all products together with the caller's balance.
func (s *ShopController) Products(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	products, err := s.svc.Products()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	available, err := s.svc.AvailablePoints(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"products":    products,
		"user_points": available,
		"is_admin":    identity.IsAdmin,
	})
}

type purchaseRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// Purchase spends points on a product.
func (s *ShopController) Purchase(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondServiceError(ctx, services.ErrInvalidQuantity)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := s.svc.Purchase(identity, req.ProductID, req.Quantity, req.Notes)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Orders lists the caller's order history.
func (s *ShopController) Orders(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	orders, err := s.svc.Orders(identity, 50)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"orders": orders})
}

// AddProduct creates a product. Admin-only.
func (s *ShopController) AddProduct(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var in services.ProductInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		respondServiceError(ctx, services.ErrInvalidQuantity)
		return
	}

	product, err := s.svc.AddProduct(identity, in)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, product)
}

// UpdateProduct edits a product. Admin-only.
func (s *ShopController) UpdateProduct(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	productID, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var in services.ProductInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		respondServiceError(ctx, services.ErrInvalidQuantity)
		return
	}

	product, err := s.svc.UpdateProduct(identity, productID, in)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, product)
}

// DeleteProduct removes a product. Admin-only.
func (s *ShopController) DeleteProduct(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	productID, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := s.svc.DeleteProduct(identity, productID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"deleted": productID})
}

// CreateSample seeds demo products on a fresh deployment. Admin-only.
func (s *ShopController) CreateSample(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	created, err := s.svc.CreateSampleProducts(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"created": created})
}

// AdminOrders lists recent orders across all users. Admin-only.
func (s *ShopController) AdminOrders(ctx *gin.Context) {
	if _, ok := requireIdentity(ctx); !ok {
		return
	}

	orders, err := s.svc.AdminOrders(100)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"orders": orders})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order between statuses. Admin-only.
func (s *ShopController) UpdateOrderStatus(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req orderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondServiceError(ctx, services.ErrInvalidStatus)
		return
	}

	if err := s.svc.UpdateOrderStatus(identity, orderID, req.Status); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"order_id": orderID, "status": req.Status})
}

// DeleteOrder removes an order row. Admin-only.
func (s *ShopController) DeleteOrder(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := s.svc.DeleteOrder(identity, orderID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"deleted": orderID})
}

func parseIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, 404, 40402, "invalid id")
		return 0, false
	}
	return uint(id), true
}
