package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"grosir/internal/clock"
	"grosir/internal/models"
	"grosir/internal/pricing"
	"grosir/internal/repositories"
	"grosir/pkg/rabbitmq"
)

// OrderCreatedEvent is published once an order has been stored.
type OrderCreatedEvent struct {
	OrderID string          `json:"order_id"`
	UserID  string          `json:"user_id"`
	StoreID string          `json:"store_id"`
	Status  string          `json:"status"`
	Total   decimal.Decimal `json:"total"`
	Items   int             `json:"items"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	materialRepo repositories.MaterialRepository
	engine       *pricing.Engine
	events       EventPublisher
	clock        clock.Clock
	log          *zap.Logger
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, materialRepo repositories.MaterialRepository, engine *pricing.Engine, events EventPublisher, clk clock.Clock, log *zap.Logger) *OrderService {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orderRepo:    orderRepo,
		materialRepo: materialRepo,
		engine:       engine,
		events:       events,
		clock:        clk,
		log:          log.Named("services.order"),
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// CreateOrder prices every line and stores the order. The markup of each line
// is frozen into the order item and is never recomputed.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	asOf := s.clock.Now()
	totalAmount := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		material, err := s.materialRepo.GetByID(ctx, line.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", line.MaterialID, err)
		}
		if material.Stock < line.Quantity {
			return nil, fmt.Errorf("%w for material %s (requested: %d, available: %d)", ErrInsufficientStock, material.Name, line.Quantity, material.Stock)
		}

		quote, err := s.engine.PriceWithMarkup(ctx, lineContext(req.StoreID, *material), material.Price, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to price material %s: %w", line.MaterialID, err)
		}

		items = append(items, models.OrderItem{
			MaterialID:    material.ID,
			SupplierID:    material.SupplierID,
			Quantity:      line.Quantity,
			OriginalPrice: quote.OriginalPrice,
			MarkupAmount:  quote.MarkupAmount,
			FinalPrice:    quote.FinalPrice,
			MarkupRuleID:  quote.RuleID(),
		})
		totalAmount = totalAmount.Add(quote.FinalPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	newOrder := &models.Order{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		StoreID:     req.StoreID,
		Items:       items,
		TotalAmount: totalAmount,
		Status:      models.OrderStatusPending,
		CreatedAt:   asOf,
		UpdatedAt:   asOf,
	}

	if err := s.orderRepo.Create(ctx, newOrder); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.log.Info("order created",
		zap.String("order_id", newOrder.ID),
		zap.String("store_id", newOrder.StoreID),
		zap.String("total", newOrder.TotalAmount.String()),
	)
	publishEvent(s.events, s.log, rabbitmq.RoutingOrderCreated, OrderCreatedEvent{
		OrderID: newOrder.ID,
		UserID:  newOrder.UserID,
		StoreID: newOrder.StoreID,
		Status:  newOrder.Status,
		Total:   newOrder.TotalAmount,
		Items:   len(newOrder.Items),
	})

	return newOrder, nil
}

var validStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// UpdateOrderStatus updates the status of an existing order. Transition rules
// are not enforced here.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
