package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/utils"
)

// probeState is a step of the date-range encoding probe. The probe moves forward only when the
// server answers the current encoding with a 4xx.
type probeState int

const (
	probePlain probeState = iota
	probeDateTimeT
	probeDateTimeSpace
	probeFailed
)

func (s probeState) String() string {
	switch s {
	case probePlain:
		return "PLAIN"
	case probeDateTimeT:
		return "DATETIME_T"
	case probeDateTimeSpace:
		return "DATETIME_SPACE"
	}
	return "FAILED"
}

// encode renders the range for this state: the dates as given, or whole-day bounds joined
// with "T" or a space.
func (s probeState) encode(start, end string) (string, string) {
	switch s {
	case probeDateTimeT:
		return datePart(start) + "T00:00:00", datePart(end) + "T23:59:59"
	case probeDateTimeSpace:
		return datePart(start) + " 00:00:00", datePart(end) + " 23:59:59"
	}
	return start, end
}

func datePart(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

// DateRange is an inclusive range of calendar dates, "YYYY-MM-DD".
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) validate(op apierrors.Op) error {
	start, end := strings.TrimSpace(r.Start), strings.TrimSpace(r.End)
	if start == "" {
		return apierrors.Validation(op, "startDate", "start date is required")
	}
	if end == "" {
		return apierrors.Validation(op, "endDate", "end date is required")
	}
	if _, ok := utils.ParseTimestamp(start); !ok {
		return apierrors.Validation(op, "startDate", "start date is not a valid date")
	}
	if _, ok := utils.ParseTimestamp(end); !ok {
		return apierrors.Validation(op, "endDate", "end date is not a valid date")
	}
	return nil
}

// probeDateRange GETs path with startDate/endDate, trying each encoding until one is accepted.
// Anything but a 4xx (success, 5xx, transport failure) ends the probe. When every encoding is
// rejected the last server error is returned as is.
func (c *Client) probeDateRange(ctx context.Context, op apierrors.Op, path string, r DateRange) (interface{}, error) {
	if err := r.validate(op); err != nil {
		return nil, err
	}
	start, end := strings.TrimSpace(r.Start), strings.TrimSpace(r.End)

	var lastErr error
	for state := probePlain; state != probeFailed; state++ {
		s, e := state.encode(start, end)
		v, err := c.call(ctx, op, "GET", path, url.Values{"startDate": {s}, "endDate": {e}}, nil)
		if err == nil {
			return v, nil
		}
		if !apierrors.IsClientError(err) {
			return nil, err
		}
		utils.InfoLogger.WithField("op", op).Debugf("date range rejected as %s: %v", state, err)
		lastErr = err
	}
	return nil, lastErr
}
