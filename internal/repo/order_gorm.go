package repo

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bytebazaar/internal/domain"
)

const dayLayout = "2006-01-02"

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
	if isDupKey(err) {
		return domain.Conflict("You already ordered this project")
	}
	return err
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Buyer").Preload("Project").First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) FindByBuyerAndProject(ctx context.Context, buyerID, projectID string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "buyer_id = ? AND project_id = ?", buyerID, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List 计数与分页是两次独立查询
func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter, offset, limit int) ([]domain.Order, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.BuyerID != "" {
			return db.Where("buyer_id = ?", f.BuyerID)
		}
		return db
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.Order{}
	err := r.db.WithContext(ctx).Scopes(scope).
		Preload("Buyer").Preload("Project").
		Order("purchased_at desc").Order("id").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *OrderRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{})
	return res.RowsAffected > 0, res.Error
}

// Stats 日期分桶在 Go 里做，三种 SQL 方言的日期函数不通用
func (r *OrderRepo) Stats(ctx context.Context, since time.Time) (domain.OrderStats, error) {
	st := domain.OrderStats{DailyRevenue: []domain.DailyRevenue{}}
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Order{}).Count(&st.TotalOrders).Error; err != nil {
		return st, err
	}
	if err := db.Model(&domain.Order{}).Select("COALESCE(SUM(amount), 0)").Scan(&st.TotalRevenue).Error; err != nil {
		return st, err
	}

	var recent []struct {
		Amount      float64
		PurchasedAt time.Time
	}
	if err := db.Model(&domain.Order{}).Select("amount", "purchased_at").
		Where("purchased_at >= ?", since).Find(&recent).Error; err != nil {
		return st, err
	}
	st.LastWeekOrders = int64(len(recent))

	buckets := map[string]*domain.DailyRevenue{}
	for _, o := range recent {
		day := o.PurchasedAt.UTC().Format(dayLayout)
		b, ok := buckets[day]
		if !ok {
			b = &domain.DailyRevenue{Date: day}
			buckets[day] = b
		}
		b.Revenue += o.Amount
		b.Orders++
	}
	for _, b := range buckets {
		st.DailyRevenue = append(st.DailyRevenue, *b)
	}
	sort.Slice(st.DailyRevenue, func(i, j int) bool { return st.DailyRevenue[i].Date < st.DailyRevenue[j].Date })

	if st.TotalOrders > 0 {
		st.AverageOrderValue = st.TotalRevenue / float64(st.TotalOrders)
	}
	return st, nil
}
