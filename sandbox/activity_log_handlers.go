package sandbox

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/yeremiapane/restaurant-console/utils"
	"gorm.io/gorm"
)

const defaultRecentLimit = 50

func (s *server) activityLogs(where func(*gorm.DB) *gorm.DB) ([]ActivityLog, error) {
	var logs []ActivityLog
	q := s.db.Order("created_at desc").Order("id desc")
	if where != nil {
		q = where(q)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Activity-log endpoints answer with bare arrays.
func (s *server) respondLogs(c *gin.Context, where func(*gorm.DB) *gorm.DB) {
	logs, err := s.activityLogs(where)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (s *server) listActivityLogs(c *gin.Context) {
	s.respondLogs(c, nil)
}

func (s *server) recentActivityLogs(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive number"})
			return
		}
		limit = n
	}
	s.respondLogs(c, func(q *gorm.DB) *gorm.DB { return q.Limit(limit) })
}

func (s *server) activityLogsByUser(c *gin.Context) {
	s.respondLogs(c, func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", c.Param("userId")) })
}

// activityLogsByEntity matches the entity type case-insensitively.
func (s *server) activityLogsByEntity(c *gin.Context) {
	entityType := strings.ToUpper(c.Param("entityType"))
	entityID := c.Param("entityId")
	s.respondLogs(c, func(q *gorm.DB) *gorm.DB {
		return q.Where("UPPER(entity_type) = ? AND entity_id = ?", entityType, entityID)
	})
}

func (s *server) activityLogsByAction(c *gin.Context) {
	action := strings.ToUpper(c.Param("actionType"))
	s.respondLogs(c, func(q *gorm.DB) *gorm.DB { return q.Where("UPPER(action_type) = ?", action) })
}

func (s *server) activityLogsByDateRange(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}
	logs, err := s.activityLogs(nil)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, lo.Filter(logs, func(l ActivityLog, _ int) bool {
		t := l.CreatedAt.UTC()
		return !t.Before(start) && !t.After(end)
	}))
}
