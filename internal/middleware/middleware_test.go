package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestLogger())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "upstream down")
	})
	app.Delete("/admin", AdminOnly("s3cret"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Use(NotFound)
	return app
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body["error"]
}

func TestErrorHandler(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != "Service Unavailable" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestNotFound(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != "Endpoint not found" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"guess", http.StatusForbidden},
		{"s3cret", http.StatusNoContent},
	}

	app := newApp()
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tt.want {
			t.Errorf("key %q: expected %d, got %d", tt.key, tt.want, resp.StatusCode)
		}
	}
}
