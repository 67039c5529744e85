package raffle

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query parameter names shared by the web form, the JSON routes and the CLI
const (
	ParamStart    = "start"
	ParamEnd      = "end"
	ParamCreator  = "creator"
	ParamMinFloor = "minFloor"
)

// Date layouts accepted for start/end bounds. The last one is what the old
// dashboard produced after stripping the trailing Z from an ISO timestamp.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// CriteriaError reports a criterion that could not be parsed
type CriteriaError struct {
	Field string
	Value string
	Err   error
}

func (e *CriteriaError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *CriteriaError) Unwrap() error {
	return e.Err
}

// ParseCriteria reads criteria from query values. Blank values leave the
// corresponding criterion unset.
func ParseCriteria(q url.Values) (Criteria, error) {
	var c Criteria
	var err error

	if c.StartDate, err = parseBound(ParamStart, q.Get(ParamStart)); err != nil {
		return Criteria{}, err
	}
	if c.EndDate, err = parseBound(ParamEnd, q.Get(ParamEnd)); err != nil {
		return Criteria{}, err
	}

	c.Creator = strings.TrimSpace(q.Get(ParamCreator))

	if raw := strings.TrimSpace(q.Get(ParamMinFloor)); raw != "" {
		d, err := parseDecimal(raw)
		if err != nil {
			return Criteria{}, &CriteriaError{Field: ParamMinFloor, Value: raw, Err: err}
		}
		c.MinFloorPrice = &d
	}

	return c, nil
}

// Values encodes c back into query values, the inverse of ParseCriteria
func (c Criteria) Values() url.Values {
	q := url.Values{}
	if c.StartDate != nil {
		q.Set(ParamStart, formatBound(*c.StartDate))
	}
	if c.EndDate != nil {
		q.Set(ParamEnd, formatBound(*c.EndDate))
	}
	if c.Creator != "" {
		q.Set(ParamCreator, c.Creator)
	}
	if c.MinFloorPrice != nil {
		q.Set(ParamMinFloor, c.MinFloorPrice.String())
	}
	return q
}

// ParseDate parses a date bound. A date without a time is pinned to the start
// of that day in UTC; everything else is converted to UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}

	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func parseBound(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, &CriteriaError{Field: field, Value: raw, Err: err}
	}
	return &t, nil
}

func formatBound(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}
