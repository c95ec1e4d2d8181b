package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bytebazaar/internal/core/events"
	"bytebazaar/internal/domain"
	"bytebazaar/pkg/utils"
)

const statsWindow = 7 * 24 * time.Hour

type OrderService struct {
	orders   domain.OrderRepository
	projects domain.ProjectRepository
	pub      events.Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(orders domain.OrderRepository, projects domain.ProjectRepository, pub events.Publisher, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	if pub == nil {
		pub = events.Noop{}
	}
	return &OrderService{orders: orders, projects: projects, pub: pub, log: log, now: time.Now}
}

type OrderPage struct {
	Orders      []domain.Order `json:"orders"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalOrders int64          `json:"totalOrders"`
}

// OrderEvent 发往消息队列的载荷
type OrderEvent struct {
	OrderID   string             `json:"orderId"`
	BuyerID   string             `json:"buyerId"`
	ProjectID string             `json:"projectId"`
	Amount    float64            `json:"amount"`
	Status    domain.OrderStatus `json:"status"`
	From      domain.OrderStatus `json:"from,omitempty"`
	At        time.Time          `json:"at"`
}

// Place 金额取下单时的项目价格快照
func (s *OrderService) Place(ctx context.Context, buyerID, projectID string) (*domain.Order, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Project not found")
	}
	existing, err := s.orders.FindByBuyerAndProject(ctx, buyerID, projectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("You already ordered this project")
	}

	now := s.now().UTC()
	o := &domain.Order{
		ID:          utils.NewID(),
		BuyerID:     buyerID,
		ProjectID:   projectID,
		Amount:      p.Price,
		Status:      domain.OrderPending,
		PurchasedAt: now,
	}
	// 并发下单由唯一索引拦截，repo 返回 Conflict
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	ordersPlaced.Inc()
	s.log.Info("order placed", zap.String("order_id", o.ID), zap.String("buyer", buyerID), zap.Float64("amount", o.Amount))
	s.publish(ctx, events.OrderPlaced, OrderEvent{
		OrderID: o.ID, BuyerID: buyerID, ProjectID: projectID, Amount: o.Amount, Status: o.Status, At: now,
	})
	return s.Get(ctx, o.ID)
}

// List f.BuyerID 为空时返回全部订单，由调用方按角色决定
func (s *OrderService) List(ctx context.Context, f domain.OrderFilter, p Page) (*OrderPage, error) {
	items, total, err := s.orders.List(ctx, f, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: items, CurrentPage: p.Page, TotalPages: p.TotalPages(total), TotalOrders: total}, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("Order not found")
	}
	return o, nil
}

// UpdateStatus 只允许 pending→completed / pending→cancelled；同状态为 no-op
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return o, nil
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, domain.Validation(fmt.Sprintf("Cannot change order status from %s to %s", o.Status, status))
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	orderStatusChanges.WithLabelValues(string(status)).Inc()
	s.log.Info("order status changed", zap.String("order_id", id),
		zap.String("from", string(o.Status)), zap.String("to", string(status)))
	s.publish(ctx, events.OrderStatusChanged, OrderEvent{
		OrderID: id, BuyerID: o.BuyerID, ProjectID: o.ProjectID, Amount: o.Amount,
		Status: status, From: o.Status, At: s.now().UTC(),
	})
	return s.Get(ctx, id)
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	ok, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Order not found")
	}
	s.log.Info("order deleted", zap.String("order_id", id))
	return nil
}

// Stats 每次实时聚合，不缓存
func (s *OrderService) Stats(ctx context.Context) (*domain.OrderStats, error) {
	st, err := s.orders.Stats(ctx, s.now().UTC().Add(-statsWindow))
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *OrderService) publish(ctx context.Context, key string, ev OrderEvent) {
	if err := s.pub.Publish(ctx, key, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("key", key), zap.Error(err))
	}
}
