package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"valve_timer/internal/models"
	"valve_timer/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.ActuationEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventOutput, Channel: 476, Level: true, Description: "on"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventOutput, Channel: 476, Description: "off"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs})

	for _, q := range []string{"?from=notatime", "?to=bogus", "?channel=x", "?channel=-2", "?limit=0"} {
		if w := do(t, r, http.MethodGet, "/api/v1/logs"+q, "", ""); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}

	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)
	if w := do(t, r, http.MethodGet, "/api/v1/logs?from="+to.Format(time.RFC3339)+"&to="+from.Format(time.RFC3339), "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("inverted range: expected 400, got %d", w.Code)
	}

	q := "/api/v1/logs?from=" + from.Format(time.RFC3339) + "&to=" + to.Format(time.RFC3339) + "&type=output&channel=476&limit=10"
	w := do(t, r, http.MethodGet, q, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                     `json:"count"`
		Events []models.ActuationEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 || !out.Events[0].Level {
		t.Fatalf("unexpected response: %+v", out)
	}
	f := logs.lastFilter
	if f.Type != models.EventOutput || f.Channel == nil || *f.Channel != 476 || f.Limit != 10 {
		t.Fatalf("unexpected filter %+v", f)
	}
	if !f.From.Equal(from) || !f.To.Equal(to) {
		t.Fatalf("range = %v..%v", f.From, f.To)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: logs})

	if w := do(t, r, http.MethodGet, "/api/v1/logs?from=2025-08-01&to=2025-08-01", "", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	want := time.Date(2025, 8, 1, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastFilter.To.Equal(want) {
		t.Fatalf("to = %v, want %v", logs.lastFilter.To, want)
	}
}

func TestLogsHandler_ServiceError(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: &mockEventLog{err: errors.New("db down")}})
	if w := do(t, r, http.MethodGet, "/api/v1/logs", "", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}
