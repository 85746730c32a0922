package services

import (
	"context"
	"net/http"

	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/normalizer"
)

type OrderService struct {
	client *Client
}

func NewOrderService(client *Client) *OrderService {
	return &OrderService{client: client}
}

func (s *OrderService) FetchAll(ctx context.Context) ([]models.Order, error) {
	v, err := s.client.call(ctx, "orders.list", http.MethodGet, "/orders", nil, nil)
	if err != nil {
		return nil, err
	}
	return normalizer.Orders(v), nil
}
