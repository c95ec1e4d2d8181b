package service

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders successfully placed",
	})
	orderStatusChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status transitions by target status",
	}, []string{"to"})
	usersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Successful signups",
	})
)

func init() { prometheus.MustRegister(ordersPlaced, orderStatusChanges, usersRegistered) }
