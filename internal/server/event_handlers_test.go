package server

import (
	"net/http"
	"testing"
	"time"

	"shipits/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)
	creator := registerUser(t, app, "organizer")
	attendee := registerUser(t, app, "attendee")

	starts := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	resp := doJSON(t, app, http.MethodPost, "/api/events", map[string]any{
		"title":     "Demo Day",
		"location":  "Gates 4401",
		"starts_at": starts.Format(time.RFC3339),
	}, creator)
	var event models.Event
	decodeBody(t, resp, &event)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotZero(t, event.ID)

	t.Run("listed in default window", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events", nil, nil)
		var body struct {
			Events []models.Event `json:"events"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Events, 1)
		assert.Equal(t, "Demo Day", body.Events[0].Title)
	})

	t.Run("rsvp toggles", func(t *testing.T) {
		path := "/api/events/" + itoa(event.ID) + "/rsvp"

		resp := doJSON(t, app, http.MethodPost, path, nil, attendee)
		var body struct {
			Attending bool         `json:"attending"`
			Event     models.Event `json:"event"`
		}
		decodeBody(t, resp, &body)
		assert.True(t, body.Attending)
		assert.Equal(t, 1, body.Event.AttendeeCount)

		resp = doJSON(t, app, http.MethodPost, path, nil, attendee)
		decodeBody(t, resp, &body)
		assert.False(t, body.Attending)
		assert.Equal(t, 0, body.Event.AttendeeCount)
	})

	t.Run("only creator can update", func(t *testing.T) {
		path := "/api/events/" + itoa(event.ID)

		resp := doJSON(t, app, http.MethodPut, path, map[string]string{
			"title": "Hostile Takeover",
		}, attendee)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doJSON(t, app, http.MethodPut, path, map[string]string{
			"title": "Demo Day (moved)",
		}, creator)
		var updated models.Event
		decodeBody(t, resp, &updated)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Demo Day (moved)", updated.Title)
	})

	t.Run("delete removes event", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, "/api/events/"+itoa(event.ID), nil, creator)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodGet, "/api/events/"+itoa(event.ID), nil, nil)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetEvents_BadRangeRejected(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)

	resp := doJSON(t, app, http.MethodGet, "/api/events?from=tomorrow", nil, nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	from := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	to := time.Now().UTC().Format(time.RFC3339)
	resp = doJSON(t, app, http.MethodGet, "/api/events?from="+from+"&to="+to, nil, nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateEvent_Validation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)
	creator := registerUser(t, app, "planner")

	resp := doJSON(t, app, http.MethodPost, "/api/events", map[string]string{
		"title": "No start time",
	}, creator)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
