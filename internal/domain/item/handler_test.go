package item

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/response"
)

type fakeRequests struct {
	ids map[int64]bool
}

func (f *fakeRequests) Exists(ctx context.Context, id int64) (bool, error) {
	return f.ids[id], nil
}

type fakeBookings struct {
	finished map[int64]bool // by booker
	last     map[int64]*BookingShort
	next     map[int64]*BookingShort
}

func (f *fakeBookings) LastAndNext(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*BookingShort, map[int64]*BookingShort, error) {
	return f.last, f.next, nil
}

func (f *fakeBookings) HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	return f.finished[userID], nil
}

type testEnv struct {
	handler  http.Handler
	owner    *user.User
	renter   *user.User
	bookings *fakeBookings
	requests *fakeRequests
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openDB(t)
	users := user.NewRepository(db)
	env := &testEnv{
		owner:    createUser(t, users, "Owner", "owner@example.com"),
		renter:   createUser(t, users, "Renter", "renter@example.com"),
		bookings: &fakeBookings{finished: map[int64]bool{}, last: map[int64]*BookingShort{}, next: map[int64]*BookingShort{}},
		requests: &fakeRequests{ids: map[int64]bool{}},
	}
	service := NewService(NewRepository(db), users, env.requests, env.bookings)
	env.handler = NewHandler(service).Routes(middleware.RequireUser)
	return env
}

func (e *testEnv) do(t *testing.T, userID int64, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != 0 {
		req.Header.Set(middleware.UserIDHeader, fmt.Sprint(userID))
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	var resp response.Response
	if w.Code != http.StatusNoContent {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, w.Body.String())
		}
	}
	return w, resp
}

func TestItemHandlerOwnership(t *testing.T) {
	e := newTestEnv(t)

	w, resp := e.do(t, e.owner.ID, http.MethodPost, "/", `{"name":"Drill","description":"Cordless","available":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := int64(resp.Data.(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/%d", id)

	w, _ = e.do(t, e.renter.ID, http.MethodPatch, path, `{"name":"Mine now"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: expected 403, got %d", w.Code)
	}
	w, _ = e.do(t, e.renter.ID, http.MethodDelete, path, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: expected 403, got %d", w.Code)
	}

	w, resp = e.do(t, e.owner.ID, http.MethodPatch, path, `{"name":"  ","available":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["name"] != "Drill" || data["available"] != false {
		t.Fatalf("unexpected update result: %v", data)
	}

	w, _ = e.do(t, e.owner.ID, http.MethodDelete, path, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w, _ = e.do(t, e.owner.ID, http.MethodGet, path, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestItemBookingsShownToOwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, e.owner.ID, http.MethodPost, "/", `{"name":"Drill","description":"Cordless","available":true}`)
	e.bookings.last[1] = &BookingShort{ID: 7, BookerID: e.renter.ID}
	e.bookings.next[1] = &BookingShort{ID: 8, BookerID: e.renter.ID}

	_, resp := e.do(t, e.owner.ID, http.MethodGet, "/1", "")
	data := resp.Data.(map[string]interface{})
	last, ok := data["last_booking"].(map[string]interface{})
	if !ok || last["id"] != float64(7) || last["booker_id"] != float64(e.renter.ID) {
		t.Fatalf("owner should see last booking, got %v", data)
	}
	if _, ok := data["next_booking"]; !ok {
		t.Fatalf("owner should see next booking, got %v", data)
	}

	_, resp = e.do(t, e.renter.ID, http.MethodGet, "/1", "")
	data = resp.Data.(map[string]interface{})
	if _, ok := data["last_booking"]; ok {
		t.Fatalf("renter must not see bookings, got %v", data)
	}

	_, resp = e.do(t, e.owner.ID, http.MethodGet, "/", "")
	list := resp.Data.([]interface{})
	if len(list) != 1 || list[0].(map[string]interface{})["next_booking"] == nil {
		t.Fatalf("owner list should be annotated, got %v", list)
	}
}

func TestItemComments(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, e.owner.ID, http.MethodPost, "/", `{"name":"Drill","description":"Cordless","available":true}`)

	w, _ := e.do(t, e.renter.ID, http.MethodPost, "/1/comment", `{"text":"Nice"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("comment without finished booking: expected 400, got %d", w.Code)
	}

	e.bookings.finished[e.renter.ID] = true
	w, resp := e.do(t, e.renter.ID, http.MethodPost, "/1/comment", `{"text":"Nice"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Data.(map[string]interface{})["author_name"] != "Renter" {
		t.Fatalf("unexpected comment: %v", resp.Data)
	}

	w, _ = e.do(t, e.renter.ID, http.MethodPost, "/99/comment", `{"text":"Nice"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("comment on unknown item: expected 404, got %d", w.Code)
	}
	w, _ = e.do(t, e.renter.ID, http.MethodPost, "/1/comment", `{"text":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank comment: expected 400, got %d", w.Code)
	}

	_, resp = e.do(t, e.renter.ID, http.MethodGet, "/1", "")
	comments := resp.Data.(map[string]interface{})["comments"].([]interface{})
	if len(comments) != 1 {
		t.Fatalf("expected one comment, got %v", comments)
	}
}

func TestItemSearch(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, e.owner.ID, http.MethodPost, "/", `{"name":"Drill","description":"Cordless","available":true}`)
	e.do(t, e.owner.ID, http.MethodPost, "/", `{"name":"Old drill","description":"Broken","available":false}`)

	_, resp := e.do(t, e.renter.ID, http.MethodGet, "/search?text=DRILL", "")
	if got := resp.Data.([]interface{}); len(got) != 1 {
		t.Fatalf("expected one available match, got %v", got)
	}

	_, resp = e.do(t, e.renter.ID, http.MethodGet, "/search?text=%20%20", "")
	if got := resp.Data.([]interface{}); len(got) != 0 {
		t.Fatalf("blank text must match nothing, got %v", got)
	}
}

func TestItemHandlerRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		userID int64
		method string
		path   string
		body   string
		want   int
	}{
		{name: "missing header", method: http.MethodGet, path: "/", want: http.StatusBadRequest},
		{name: "missing available", userID: 1, method: http.MethodPost, path: "/", body: `{"name":"A","description":"B"}`, want: http.StatusBadRequest},
		{name: "blank name", userID: 1, method: http.MethodPost, path: "/", body: `{"name":" ","description":"B","available":true}`, want: http.StatusBadRequest},
		{name: "unknown user", userID: 99, method: http.MethodPost, path: "/", body: `{"name":"A","description":"B","available":true}`, want: http.StatusNotFound},
		{name: "unknown request", userID: 1, method: http.MethodPost, path: "/", body: `{"name":"A","description":"B","available":true,"request_id":5}`, want: http.StatusNotFound},
		{name: "negative from", userID: 1, method: http.MethodGet, path: "/?from=-1", want: http.StatusBadRequest},
		{name: "bad id", userID: 1, method: http.MethodGet, path: "/x", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			w, resp := e.do(t, tt.userID, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if resp.Success {
				t.Fatal("expected error envelope")
			}
		})
	}
}

func TestItemHandlerRequestRemovedBeforeInsert(t *testing.T) {
	e := newTestEnv(t)
	// The checker still reports request 42, but no such row exists any more.
	e.requests.ids[42] = true

	w, resp := e.do(t, e.owner.ID, http.MethodPost, "/", `{"name":"Ladder","description":"Tall","available":true,"request_id":42}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", w.Body.String())
	}
}
