package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/query"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/utils"
)

type ActivityLogController struct {
	client   *services.Client
	pageSize int
}

func NewActivityLogController(client *services.Client, pageSize int) *ActivityLogController {
	return &ActivityLogController{client: client, pageSize: pageSize}
}

// GetActivityLogs picks the narrowest remote fetch the query allows (date range, entity, action,
// user, recent, or everything) and applies search, filters, sort and paging locally.
func (lc *ActivityLogController) GetActivityLogs(c *gin.Context) {
	logs := services.NewActivityLogService(sessionClient(c, lc.client))
	ctx := c.Request.Context()

	startDate := strings.TrimSpace(c.Query("startDate"))
	endDate := strings.TrimSpace(c.Query("endDate"))
	entityType := c.Query(query.FilterEntityType)
	entityID := c.Query(query.FilterEntityID)
	actionType := c.Query(query.FilterActionType)
	userID := c.Query(query.FilterUserID)

	var (
		records []models.ActivityLog
		err     error
	)
	switch {
	case startDate != "" || endDate != "":
		records, err = logs.FetchByDateRange(ctx, services.DateRange{Start: startDate, End: endDate})
	case strings.TrimSpace(entityType) != "" || strings.TrimSpace(entityID) != "":
		records, err = logs.FetchByEntity(ctx, entityType, entityID)
	case strings.TrimSpace(actionType) != "":
		records, err = logs.FetchByActionType(ctx, actionType)
	case strings.TrimSpace(userID) != "":
		records, err = logs.FetchByUser(ctx, userID)
	case c.Query("recent") != "":
		limit, _ := strconv.Atoi(c.Query("recent"))
		records, err = logs.FetchRecent(ctx, limit)
	default:
		records, err = logs.FetchAll(ctx)
	}
	if err != nil {
		respondErr(c, err)
		return
	}

	st := stateFrom(c, lc.pageSize, query.FilterActionType, query.FilterEntityType, query.FilterEntityID, query.FilterUserID)
	page := query.Apply(records, query.ActivityLogSchema, st)
	utils.RespondJSON(c, http.StatusOK, "List of activity logs", page)
}
