package studybuddy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
}

// ListEvents returns the timetable of userID. Events whose times cannot be
// parsed are left out.
func (c *Client) ListEvents(ctx context.Context, userID int64) ([]domain.TimetableEvent, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/timetable/", userQuery(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list events: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list events: %w", err)
	}
	items, err := decodeList[apiEvent](body)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list events: %w", err)
	}

	out := make([]domain.TimetableEvent, 0, len(items))
	for _, it := range items {
		ev, err := it.toDomain()
		if err != nil {
			c.log.WarnContext(ctx, "skipping timetable event", slog.String("error", err.Error()))
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// CreateEvent adds a timetable entry for userID.
func (c *Client) CreateEvent(ctx context.Context, userID int64, d domain.EventDraft) error {
	payload := apiEventRequest{Title: d.Title, StartTime: d.StartTime(), EndTime: d.EndTime()}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/timetable/", userQuery(userID), payload)
	if err != nil {
		return fmt.Errorf("studybuddy: create event: %w", err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: create event: %w", err)
	}
	return nil
}
