package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/menumetrics/menupricer/internal/auth"
	"github.com/menumetrics/menupricer/internal/models"
)

func TestHealth(t *testing.T) {
	cases := []struct {
		name       string
		configured bool
		wantStatus string
	}{
		{"ai configured", true, "connected"},
		{"ai not configured", false, "not configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewStatusHandler(tc.configured, testLogger())

			rr := httptest.NewRecorder()
			handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}

			var resp map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["status"] != "healthy" {
				t.Errorf("expected status healthy, got %q", resp["status"])
			}
			if resp["ai_status"] != tc.wantStatus {
				t.Errorf("expected ai_status %q, got %q", tc.wantStatus, resp["ai_status"])
			}
		})
	}
}

func TestHome(t *testing.T) {
	handler := NewStatusHandler(true, testLogger())

	rr := httptest.NewRecorder()
	handler.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg, ok := resp["message"].(string); !ok || msg == "" {
		t.Error("expected a message in the root response")
	}
	if _, ok := resp["endpoints"]; !ok {
		t.Error("expected an endpoint listing in the root response")
	}
}

func TestHomeUnknownPath(t *testing.T) {
	handler := NewStatusHandler(true, testLogger())

	rr := httptest.NewRecorder()
	handler.Home(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestLogin(t *testing.T) {
	cfg := auth.Config{
		JWTSecret:     "test-secret",
		AdminPassword: "hunter2",
		TokenDuration: time.Hour,
	}
	handler := NewAuthHandler(cfg, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"password": "hunter2"}`))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in the response")
	}

	userID, err := auth.ValidateToken(resp.Token, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if userID != "admin" {
		t.Errorf("expected token for admin, got %q", userID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	cfg := auth.Config{
		JWTSecret:     "test-secret",
		AdminPassword: "hunter2",
		TokenDuration: time.Hour,
	}
	handler := NewAuthHandler(cfg, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"password": "wrong"}`))
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

type listStore struct {
	fakeStore
	suggestions []models.PricingSuggestion
	gotLimit    int
	err         error
}

func (l *listStore) ListSuggestions(ctx context.Context, limit int) ([]models.PricingSuggestion, error) {
	l.gotLimit = limit
	return l.suggestions, l.err
}

func TestListSuggestions(t *testing.T) {
	store := &listStore{
		suggestions: []models.PricingSuggestion{
			{ID: 1, MenuItemID: 123, RecommendedPrice: 268},
		},
	}
	handler := NewAdminHandler(store, testLogger())

	rr := httptest.NewRecorder()
	handler.ListSuggestions(rr, httptest.NewRequest(http.MethodGet, "/api/admin/suggestions?limit=10", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.gotLimit != 10 {
		t.Errorf("expected limit 10 passed to store, got %d", store.gotLimit)
	}

	var resp struct {
		Suggestions []models.PricingSuggestion `json:"suggestions"`
		Count       int                        `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Suggestions) != 1 {
		t.Errorf("expected one suggestion, got count=%d len=%d", resp.Count, len(resp.Suggestions))
	}
}

func TestListSuggestionsBadLimit(t *testing.T) {
	handler := NewAdminHandler(&listStore{}, testLogger())

	for _, limit := range []string{"0", "-5", "501", "lots"} {
		rr := httptest.NewRecorder()
		handler.ListSuggestions(rr, httptest.NewRequest(http.MethodGet, "/api/admin/suggestions?limit="+limit, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, rr.Code)
		}
	}
}

func TestListSuggestionsStoreError(t *testing.T) {
	handler := NewAdminHandler(&listStore{err: errors.New("db down")}, testLogger())

	rr := httptest.NewRecorder()
	handler.ListSuggestions(rr, httptest.NewRequest(http.MethodGet, "/api/admin/suggestions", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
