package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions 合法状态迁移；completed/cancelled 为终态
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderCompleted, OrderCancelled},
}

// CanTransitionTo 同状态视为 no-op，允许
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	BuyerID     string      `gorm:"size:36;not null;uniqueIndex:idx_orders_buyer_project" json:"buyerId" bson:"buyer_id"`
	Buyer       *User       `gorm:"foreignKey:BuyerID" json:"buyer,omitempty" bson:"-"`
	ProjectID   string      `gorm:"size:36;not null;uniqueIndex:idx_orders_buyer_project" json:"projectId" bson:"project_id"`
	Project     *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty" bson:"-"`
	Amount      float64     `gorm:"not null" json:"amount" bson:"amount"`
	Status      OrderStatus `gorm:"size:16;not null;default:pending;index" json:"status" bson:"status"`
	PurchasedAt time.Time   `gorm:"not null;index" json:"purchasedAt" bson:"purchased_at"`
	CreatedAt   time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updated_at"`
}

// OrderFilter BuyerID 为空表示全部订单
type OrderFilter struct {
	BuyerID string
}

type DailyRevenue struct {
	Date    string  `json:"date" bson:"_id"`
	Revenue float64 `json:"revenue" bson:"revenue"`
	Orders  int64   `json:"orders" bson:"orders"`
}

type OrderStats struct {
	TotalOrders       int64          `json:"totalOrders"`
	TotalRevenue      float64        `json:"totalRevenue"`
	LastWeekOrders    int64          `json:"lastWeekOrders"`
	DailyRevenue      []DailyRevenue `json:"dailyRevenue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
}

type OrderRepository interface {
	// Create 唯一索引冲突时返回 ErrConflict
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByBuyerAndProject(ctx context.Context, buyerID, projectID string) (*Order, error)
	List(ctx context.Context, f OrderFilter, offset, limit int) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	Delete(ctx context.Context, id string) (bool, error)
	// Stats since 之后的订单按 UTC 日期分桶
	Stats(ctx context.Context, since time.Time) (OrderStats, error)
}
