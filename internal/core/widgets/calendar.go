package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultCalendarWindow     = 7 * 24 * time.Hour
	DefaultCalendarMaxResults = 20
)

// CalendarQuery bounds a calendar read. Empty fields take the defaults:
// now, now+7d and 20 results.
type CalendarQuery struct {
	TimeMin    string
	TimeMax    string
	MaxResults int
}

type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// Calendar lists events from the user's primary Google calendar. Results are
// per user and never cached.
func (s *Service) Calendar(ctx context.Context, token *oauth2.Token, q CalendarQuery) ([]CalendarEvent, error) {
	now := time.Now().UTC()
	if q.TimeMin == "" {
		q.TimeMin = now.Format(time.RFC3339)
	}
	if q.TimeMax == "" {
		q.TimeMax = now.Add(DefaultCalendarWindow).Format(time.RFC3339)
	}
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultCalendarMaxResults
	}

	params := url.Values{}
	params.Set("timeMin", q.TimeMin)
	params.Set("timeMax", q.TimeMax)
	params.Set("maxResults", strconv.Itoa(q.MaxResults))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.CalendarURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, s.client), oauth2.StaticTokenSource(token))
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := "calendar request failed"
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, fmt.Errorf("%w: %s (%d)", ErrUpstream, msg, resp.StatusCode)
	}

	var body struct {
		Items []CalendarEvent `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode events: %v", ErrUpstream, err)
	}
	if body.Items == nil {
		body.Items = []CalendarEvent{}
	}
	return body.Items, nil
}
