package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/query"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/utils"
)

type OrderController struct {
	client   *services.Client
	pageSize int
}

func NewOrderController(client *services.Client, pageSize int) *OrderController {
	return &OrderController{client: client, pageSize: pageSize}
}

type orderView struct {
	models.Order
	Contents       []string `json:"contents"`
	TotalFormatted string   `json:"totalFormatted"`
}

func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := services.NewOrderService(sessionClient(c, oc.client)).FetchAll(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}

	st := stateFrom(c, oc.pageSize, query.FilterAssignedUserID, query.FilterStatus, query.FilterTableID)
	page := query.MapPage(query.Apply(orders, query.OrderSchema, st), func(o models.Order) orderView {
		return orderView{
			Order:          o,
			Contents:       o.Contents(),
			TotalFormatted: utils.FormatCurrencyIDR(o.TotalAmount),
		}
	})
	utils.RespondJSON(c, http.StatusOK, "List of orders", page)
}
