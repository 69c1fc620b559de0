package preference

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/wichananm65/able-backend/internal/domain"
)

// makeApp injects a jwt.Token into locals when X-User-ID is set, standing in
// for the jwt middleware.
func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, userID, body string) (int, domain.Preferences) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	var p domain.Preferences
	if res.StatusCode == fiber.StatusOK {
		b, _ := io.ReadAll(res.Body)
		if err := jsoniter.Unmarshal(b, &p); err != nil {
			t.Fatalf("decode %s: %v", b, err)
		}
	}
	return res.StatusCode, p
}

func TestPreferenceRoutesRequireUser(t *testing.T) {
	s := NewSessions(NewMemoryStore(), nil)
	defer s.Close()
	app := makeApp(NewHandler(s))

	if code, _ := do(t, app, "GET", "/api/v1/preferences", "", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestPreferenceRoutes(t *testing.T) {
	s := NewSessions(NewMemoryStore(), nil)
	defer s.Close()
	app := makeApp(NewHandler(s))

	code, p := do(t, app, "POST", "/api/v1/preferences/challenges/wheelchair-user", "5", "")
	if code != fiber.StatusOK || !p.FeatureIDs.Has("seated-cut") || !p.FeatureIDs.Has("side-opening") {
		t.Fatalf("unexpected challenge response %d %+v", code, p)
	}

	code, p = do(t, app, "PUT", "/api/v1/preferences/gender", "5", `{"gender":"womens"}`)
	if code != fiber.StatusOK || p.Gender == nil || *p.Gender != domain.GenderWomens {
		t.Fatalf("unexpected gender response %d %+v", code, p)
	}

	if code, _ = do(t, app, "PUT", "/api/v1/preferences/gender", "5", `{"gender":"aliens"}`); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown gender, got %d", code)
	}

	code, p = do(t, app, "PUT", "/api/v1/preferences/price-tier", "5", `{"priceTier":"premium"}`)
	if code != fiber.StatusOK || p.PriceTier == nil || *p.PriceTier != domain.PriceTierPremium {
		t.Fatalf("unexpected tier response %d %+v", code, p)
	}

	code, p = do(t, app, "POST", "/api/v1/preferences/features/seated-cut/toggle", "5", "")
	if code != fiber.StatusOK || p.FeatureIDs.Has("seated-cut") {
		t.Fatalf("toggle should remove seated-cut, got %d %+v", code, p)
	}

	code, p = do(t, app, "PUT", "/api/v1/preferences/mode", "5", `{"mode":"caregiver"}`)
	if code != fiber.StatusOK || p.Mode != domain.ModeCaregiver {
		t.Fatalf("unexpected mode response %d %+v", code, p)
	}

	// another user is unaffected
	code, other := do(t, app, "GET", "/api/v1/preferences", "6", "")
	if code != fiber.StatusOK || other.Gender != nil || len(other.FeatureIDs) != 0 {
		t.Fatalf("expected defaults for user 6, got %+v", other)
	}

	code, p = do(t, app, "PUT", "/api/v1/preferences/gender", "5", `{"gender":null}`)
	if code != fiber.StatusOK || p.Gender != nil {
		t.Fatalf("null gender should clear, got %d %+v", code, p)
	}

	code, p = do(t, app, "DELETE", "/api/v1/preferences", "5", "")
	if code != fiber.StatusOK || p.PriceTier != nil || len(p.ChallengeIDs) != 0 || p.Mode != domain.ModeCaregiver {
		t.Fatalf("clear should reset everything but the mode, got %d %+v", code, p)
	}
}

func TestChallengesRoute(t *testing.T) {
	s := NewSessions(NewMemoryStore(), nil)
	defer s.Close()
	app := makeApp(NewHandler(s))

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/challenges", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), "wheelchair-user") {
		t.Fatalf("unexpected challenges response %d %s", res.StatusCode, b)
	}
}
