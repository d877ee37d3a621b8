package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-storefront/internal/app"
	"auction-storefront/internal/config"
	"auction-storefront/internal/messaging"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testClock is a manually advanced clock shared by the auction sessions and
// the identity service
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testApp struct {
	router    *gin.Engine
	clock     *testClock
	publisher *messaging.RecordingPublisher
}

// SetupTestApp wires the whole storefront over freshly seeded fixtures
func SetupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{now: time.Now().UTC()}
	publisher := &messaging.RecordingPublisher{}
	cfg := &config.Config{
		JWTSecret:    "integration-secret",
		JWTTTL:       24 * time.Hour,
		BidIncrement: decimal.NewFromInt(1),
		TickInterval: time.Hour,
	}

	storefront, err := app.New(cfg, app.Options{
		Now:        clock.Now,
		BcryptCost: bcrypt.MinCost,
		Publisher:  publisher,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, storefront.Close()) })

	return &testApp{router: storefront.Router, clock: clock, publisher: publisher}
}

// Do executes a request, signed with token when set, and decodes the envelope
func (a *testApp) Do(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp, w
}

// Login signs a fixture or registered user in and returns the token
func (a *testApp) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp, w := a.Do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, resp)
	return resp["data"].(map[string]any)["token"].(string)
}

// Register creates a customer account and returns its token and user ID
func (a *testApp) Register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	resp, w := a.Do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":             name,
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, resp)
	data := resp["data"].(map[string]any)
	return data["token"].(string), data["user"].(map[string]any)["user_id"].(string)
}

// ListAuction has the fixture seller list a new auction ending after d
func (a *testApp) ListAuction(t *testing.T, startingPrice float64, d time.Duration) string {
	t.Helper()
	sellerToken := a.Login(t, "seller@example.com", "sellerpass")
	resp, w := a.Do(t, http.MethodPost, "/seller/products", sellerToken, map[string]any{
		"name":             "Antique Brass Compass",
		"description":      "A working brass compass from the early 1900s.",
		"price":            startingPrice,
		"category":         "Collectibles",
		"type":             "auction",
		"image_url":        "https://img.example.com/compass.png",
		"auction_end_date": a.clock.Now().Add(d).Format(time.RFC3339Nano),
	})
	require.Equal(t, http.StatusCreated, w.Code, resp)
	return resp["data"].(map[string]any)["product_id"].(string)
}

func data(resp map[string]any) map[string]any {
	return resp["data"].(map[string]any)
}
