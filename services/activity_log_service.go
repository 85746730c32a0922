package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/query"
)

const defaultRecentLimit = 50

type ActivityLogService struct {
	client *Client
}

func NewActivityLogService(client *Client) *ActivityLogService {
	return &ActivityLogService{client: client}
}

func (s *ActivityLogService) list(ctx context.Context, op apierrors.Op, path string, q url.Values) ([]models.ActivityLog, error) {
	v, err := s.client.call(ctx, op, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	return normalizer.ActivityLogs(v), nil
}

func (s *ActivityLogService) FetchAll(ctx context.Context) ([]models.ActivityLog, error) {
	return s.list(ctx, "activityLogs.list", "/activity-logs", nil)
}

// FetchRecent returns the newest limit entries; a limit of zero or less asks for 50.
func (s *ActivityLogService) FetchRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.list(ctx, "activityLogs.recent", "/activity-logs/recent", url.Values{"limit": {strconv.Itoa(limit)}})
}

func (s *ActivityLogService) FetchByUser(ctx context.Context, userID string) ([]models.ActivityLog, error) {
	const op apierrors.Op = "activityLogs.byUser"
	if strings.TrimSpace(userID) == "" {
		return nil, apierrors.Validation(op, normalizer.FieldUserID, "user id is required")
	}
	return s.list(ctx, op, "/activity-logs/user/"+url.PathEscape(strings.TrimSpace(userID)), nil)
}

// FetchByEntity asks the server for one entity's logs only when both the type and the id are
// known. With a single coordinate it fetches everything and filters locally, so no request is
// ever made with a blank path segment.
func (s *ActivityLogService) FetchByEntity(ctx context.Context, entityType, entityID string) ([]models.ActivityLog, error) {
	const op apierrors.Op = "activityLogs.byEntity"
	entityType = normalizer.NormalizeToken(entityType)
	entityID = strings.TrimSpace(entityID)

	if entityType == "" && entityID == "" {
		return nil, apierrors.Validation(op, normalizer.FieldEntityType, "entity type or id is required")
	}
	if entityType != "" && entityID != "" {
		return s.list(ctx, op, "/activity-logs/entity/"+url.PathEscape(entityType)+"/"+url.PathEscape(entityID), nil)
	}

	all, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	match := query.MatchEntity(entityType, entityID)
	return lo.Filter(all, func(l models.ActivityLog, _ int) bool { return match(l) }), nil
}

func (s *ActivityLogService) FetchByActionType(ctx context.Context, actionType string) ([]models.ActivityLog, error) {
	const op apierrors.Op = "activityLogs.byAction"
	token := normalizer.NormalizeToken(actionType)
	if token == "" {
		return nil, apierrors.Validation(op, normalizer.FieldActionType, "action type is required")
	}
	return s.list(ctx, op, "/activity-logs/action/"+url.PathEscape(token), nil)
}

func (s *ActivityLogService) FetchByDateRange(ctx context.Context, r DateRange) ([]models.ActivityLog, error) {
	v, err := s.client.probeDateRange(ctx, "activityLogs.byDateRange", "/activity-logs/date-range", r)
	if err != nil {
		return nil, err
	}
	return normalizer.ActivityLogs(v), nil
}
