package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/middlewares"
	"github.com/yeremiapane/restaurant-console/query"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/store"
	"github.com/yeremiapane/restaurant-console/utils"
)

// errBusy is returned when a mutation arrives while the session's store is still working.
var errBusy = errors.New("another reservation operation is still running, try again shortly")

// statusFor maps an error to the HTTP status the console answers with.
func statusFor(err error) int {
	if errors.Is(err, errBusy) {
		return http.StatusConflict
	}
	switch apierrors.KindOf(err) {
	case apierrors.KClientValidation:
		return http.StatusBadRequest
	case apierrors.KRemote:
		if s := apierrors.StatusOf(err); s >= 400 && s <= 599 {
			return s
		}
		return http.StatusBadGateway
	case apierrors.KTransport, apierrors.KDecode:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondErr(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= 500 {
		utils.ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("console request failed: %v", err)
	}

	var e *apierrors.Error
	if errors.As(err, &e) && e.Field != "" {
		utils.RespondJSON(c, code, e.Message(), gin.H{"field": e.Field})
		return
	}
	utils.RespondError(c, code, err)
}

// stateFrom reads search, sort, page and the given filters from the query string.
func stateFrom(c *gin.Context, pageSize int, filters ...string) query.State {
	st := query.NewState()
	st.PageSize = pageSize
	st = st.WithSearch(c.Query("search")).WithSort(query.ParseSortOrder(c.Query("sort")))
	for _, key := range filters {
		st = st.WithFilter(key, c.Query(key))
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		st = st.WithPage(page)
	}
	return st
}

// sessionClient binds the request's session to the shared API client.
func sessionClient(c *gin.Context, client *services.Client) *services.Client {
	return client.WithSession(middlewares.SessionFrom(c))
}

// sessionStore returns the reservation store of the request's session.
func sessionStore(c *gin.Context, client *services.Client, registry *store.Registry) *store.ReservationStore {
	session := middlewares.SessionFrom(c)
	return registry.Get(session.Token, func() store.ReservationAPI {
		return services.NewReservationService(client.WithSession(session))
	})
}
