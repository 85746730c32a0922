package sandbox

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/utils"
)

// listOrders preloads the relations the console reads: table, chef and item menus.
func (s *server) listOrders(c *gin.Context) {
	var orders []Order
	err := s.db.
		Preload("Table").
		Preload("Chef").
		Preload("OrderItems.Menu").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data":   orders,
	})
}
