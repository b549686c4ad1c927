package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisclient "github.com/redis/go-redis/v9"

	"github.com/jonborges/menu4you/pkg/api"
	"github.com/jonborges/menu4you/pkg/cart"
	"github.com/jonborges/menu4you/pkg/events"
	"github.com/jonborges/menu4you/pkg/fallback"
	"github.com/jonborges/menu4you/pkg/global"
	"github.com/jonborges/menu4you/pkg/modal"
	"github.com/jonborges/menu4you/pkg/models"
	"github.com/jonborges/menu4you/pkg/notify"
	"github.com/jonborges/menu4you/pkg/redis"
	"github.com/jonborges/menu4you/pkg/session"
	"github.com/jonborges/menu4you/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool                     `json:"success"`
	Data    json.RawMessage          `json:"data"`
	Message string                   `json:"message"`
	Errors  []global.ValidationError `json:"errors"`
}

type testEnv struct {
	engine  *gin.Engine
	mr      *miniredis.Miniredis
	session *session.Manager
	toasts  *notify.Queue
}

// newTestEnv wires the companion API against backend. A nil backend
// stands for an unreachable server.
func newTestEnv(t *testing.T, backend *gin.Engine) *testEnv {
	t.Helper()

	var backendURL string
	if backend == nil {
		srv := httptest.NewServer(http.NotFoundHandler())
		backendURL = srv.URL
		srv.Close()
	} else {
		srv := httptest.NewServer(backend)
		t.Cleanup(srv.Close)
		backendURL = srv.URL
	}

	mr := miniredis.RunT(t)
	rc := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })
	kv := redis.NewStorage(rc, "")

	bus := events.NewBus()
	conn := events.NewConnectivity(bus)
	t.Cleanup(conn.Close)
	sess := session.NewManager(session.NewStore(kv), bus)
	client := api.NewClient(backendURL,
		api.WithBus(bus),
		api.WithTokenSource(sess),
		api.WithFallback(fallback.NewUsers(fallback.NewKVStore(kv))),
		api.WithRetry(0, 0),
	)
	toasts := notify.NewQueue(time.Minute, 5)
	t.Cleanup(toasts.Close)

	h := NewHandler(Deps{
		API:          client,
		Session:      sess,
		Guests:       session.NewGuestStore(kv),
		Cart:         cart.New(client, cart.NewTableStore(kv)),
		Toasts:       toasts,
		Modal:        modal.New(),
		Connectivity: conn,
		Ping:         func(ctx context.Context) error { return redis.Ping(ctx, rc) },
	})
	engine := gin.New()
	InitializeRoutes(engine, h)
	return &testEnv{engine: engine, mr: mr, session: sess, toasts: toasts}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: bad envelope %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func restaurantBackend(tableCount int) *gin.Engine {
	r := gin.New()
	r.GET("/api/restaurants/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": 3, "name": "Cantina", "tableCount": tableCount})
	})
	return r
}

func TestGuestCheckoutFlow(t *testing.T) {
	backend := restaurantBackend(10)
	var mu sync.Mutex
	var placed models.OrderRequest
	backend.POST("/orders", func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		if err := c.ShouldBindJSON(&placed); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": 99, "total": "12.50"})
	})
	env := newTestEnv(t, backend)

	if code, resp := env.do(t, http.MethodPut, "/api/cart/table", `{"restaurantId":3,"tableNumber":4}`); code != http.StatusOK {
		t.Fatalf("bind table: %d %+v", code, resp)
	}
	code, resp := env.do(t, http.MethodPost, "/api/cart/items", `{"itemId":11,"name":"Soup","price":"12.50","quantity":1,"restaurantId":3}`)
	if code != http.StatusOK {
		t.Fatalf("add item: %d %+v", code, resp)
	}
	snap := decode[cart.Snapshot](t, resp.Data)
	if snap.ItemCount != 1 || snap.Total.String() != "12.5" {
		t.Fatalf("snapshot = %+v", snap)
	}

	code, resp = env.do(t, http.MethodPost, "/api/cart/checkout", `{"guestName":"Maria"}`)
	if code != http.StatusCreated {
		t.Fatalf("checkout: %d %+v", code, resp)
	}
	if order := decode[models.Order](t, resp.Data); order.ID != 99 {
		t.Fatalf("order = %+v", order)
	}

	mu.Lock()
	if placed.GuestName != "Maria" || placed.UserID != nil || placed.TableNumber == nil || *placed.TableNumber != 4 {
		t.Fatalf("backend got %+v", placed)
	}
	mu.Unlock()

	_, resp = env.do(t, http.MethodGet, "/api/cart", "")
	snap = decode[cart.Snapshot](t, resp.Data)
	if len(snap.Items) != 0 || snap.TableNumber != nil || snap.State != cart.Empty.String() {
		t.Fatalf("cart after checkout = %+v", snap)
	}
	if v, _ := env.mr.Get(storage.KeyGuestName); v != "Maria" {
		t.Fatalf("guest name stored = %q", v)
	}
	toasts := env.toasts.List()
	if len(toasts) != 1 || toasts[0].Kind != notify.Info {
		t.Fatalf("toasts = %+v", toasts)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t, gin.New())

	code, resp := env.do(t, http.MethodPost, "/api/cart/checkout", "")

	if code != http.StatusBadRequest || len(resp.Errors) != 1 || resp.Errors[0].Code != api.CodeEmptyCart {
		t.Fatalf("checkout empty: %d %+v", code, resp)
	}
	if toasts := env.toasts.List(); len(toasts) != 1 || toasts[0].Kind != notify.Error {
		t.Fatalf("toasts = %+v", toasts)
	}
}

func TestUnreachableBackend(t *testing.T) {
	env := newTestEnv(t, nil)

	code, _ := env.do(t, http.MethodGet, "/api/restaurants", "")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}

	_, resp := env.do(t, http.MethodGet, "/api/status", "")
	status := decode[map[string]any](t, resp.Data)
	if status["offline"] != true {
		t.Fatalf("status = %v", status)
	}
}

func TestUpstreamStatusPassesThrough(t *testing.T) {
	backend := gin.New()
	backend.GET("/api/restaurants/:id", func(c *gin.Context) {
		c.String(http.StatusNotFound, "restaurant not found")
	})
	env := newTestEnv(t, backend)

	code, resp := env.do(t, http.MethodGet, "/api/restaurants/5", "")

	if code != http.StatusNotFound || resp.Message != "restaurant not found" {
		t.Fatalf("got %d %+v", code, resp)
	}
}

func TestMalformedUpstream(t *testing.T) {
	backend := gin.New()
	backend.GET("/api/restaurants/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": 0})
	})
	env := newTestEnv(t, backend)

	if code, _ := env.do(t, http.MethodGet, "/api/restaurants/5", ""); code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", code)
	}
}

func TestLocalAccountsWhenOffline(t *testing.T) {
	env := newTestEnv(t, nil)

	code, resp := env.do(t, http.MethodPost, "/api/auth/register", `{"username":"ana","email":"ana@example.com","password":"secret1"}`)
	if code != http.StatusCreated {
		t.Fatalf("register: %d %+v", code, resp)
	}
	if !env.session.IsLoggedIn() || !fallback.IsLocalToken(env.session.Token()) {
		t.Fatalf("session token = %q", env.session.Token())
	}

	code, resp = env.do(t, http.MethodPost, "/api/auth/register", `{"username":"ana","email":"other@example.com","password":"secret1"}`)
	if code != http.StatusConflict || resp.Errors[0].Code != api.CodeDuplicateUser {
		t.Fatalf("duplicate register: %d %+v", code, resp)
	}

	if code, _ := env.do(t, http.MethodPost, "/api/auth/logout", ""); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if env.mr.Exists(storage.KeyToken) {
		t.Fatal("token still stored after logout")
	}

	code, resp = env.do(t, http.MethodPost, "/api/auth/login", `{"username":"ana@example.com","password":"wrong"}`)
	if code != http.StatusBadRequest || resp.Errors[0].Code != api.CodeInvalidCredentials {
		t.Fatalf("bad login: %d %+v", code, resp)
	}
	if code, _ := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"ana@example.com","password":"secret1"}`); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
}

func TestOwnerRoutesRequireLogin(t *testing.T) {
	env := newTestEnv(t, gin.New())

	code, _ := env.do(t, http.MethodPost, "/api/items", `{"name":"Soup","price":"3","restaurantId":1}`)

	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestCreateRestaurantDefaultsOwner(t *testing.T) {
	backend := gin.New()
	var got models.RestaurantRequest
	backend.POST("/api/restaurants", func(c *gin.Context) {
		c.ShouldBindJSON(&got)
		c.JSON(http.StatusCreated, gin.H{"id": 8, "name": got.Name})
	})
	env := newTestEnv(t, backend)
	if err := env.session.Login(context.Background(), "tok", 7, "ana", "ana@example.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	code, resp := env.do(t, http.MethodPost, "/api/restaurants", `{"name":"Cantina"}`)

	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, resp)
	}
	if got.OwnerID == nil || *got.OwnerID != 7 {
		t.Fatalf("backend got owner %v", got.OwnerID)
	}
}

func TestBadIDParam(t *testing.T) {
	env := newTestEnv(t, gin.New())

	code, resp := env.do(t, http.MethodPut, "/api/cart/items/abc", `{"quantity":2}`)

	if code != http.StatusBadRequest || resp.Errors[0].Field != "itemId" {
		t.Fatalf("got %d %+v", code, resp)
	}
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	env := newTestEnv(t, gin.New())
	env.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"name":"Tea","price":"2","quantity":3}`)

	_, resp := env.do(t, http.MethodPut, "/api/cart/items/1", `{"quantity":0}`)

	snap := decode[cart.Snapshot](t, resp.Data)
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 1 {
		t.Fatalf("items = %+v", snap.Items)
	}
}

func TestBindTableChecksRestaurant(t *testing.T) {
	env := newTestEnv(t, restaurantBackend(2))

	code, _ := env.do(t, http.MethodPut, "/api/cart/table", `{"restaurantId":3,"tableNumber":5}`)

	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if env.mr.Exists(storage.KeyTableNumber) {
		t.Fatal("unknown table was stored")
	}
}

func TestBindTableWhileOffline(t *testing.T) {
	env := newTestEnv(t, nil)

	code, resp := env.do(t, http.MethodPut, "/api/cart/table", `{"restaurantId":3,"tableNumber":5}`)

	if code != http.StatusOK {
		t.Fatalf("bind offline: %d %+v", code, resp)
	}
	if v, _ := env.mr.Get(storage.KeyTableNumber); v != "5" {
		t.Fatalf("stored table = %q", v)
	}
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t, gin.New())

	code, resp := env.do(t, http.MethodPost, "/api/notifications", `{"message":"Saved","kind":"warning"}`)
	if code != http.StatusCreated {
		t.Fatalf("show: %d %+v", code, resp)
	}
	toast := decode[notify.Toast](t, resp.Data)
	if toast.Kind != notify.Warning {
		t.Fatalf("toast = %+v", toast)
	}

	if code, _ := env.do(t, http.MethodPost, "/api/notifications", `{"message":"x","kind":"loud"}`); code != http.StatusBadRequest {
		t.Fatalf("bad kind accepted: %d", code)
	}

	if code, _ := env.do(t, http.MethodDelete, "/api/notifications/"+toast.ID, ""); code != http.StatusOK {
		t.Fatalf("dismiss: %d", code)
	}
	if code, _ := env.do(t, http.MethodDelete, "/api/notifications/"+toast.ID, ""); code != http.StatusNotFound {
		t.Fatalf("second dismiss: %d", code)
	}
}

func TestModal(t *testing.T) {
	env := newTestEnv(t, gin.New())

	code, resp := env.do(t, http.MethodPost, "/api/modal", `{"item":{"id":1,"name":"Soup","price":"4","restaurantId":6}}`)
	if code != http.StatusOK {
		t.Fatalf("open: %d %+v", code, resp)
	}
	sel := decode[modal.Selection](t, resp.Data)
	if !sel.Open || sel.RestaurantID == nil || *sel.RestaurantID != 6 {
		t.Fatalf("selection = %+v", sel)
	}

	_, resp = env.do(t, http.MethodDelete, "/api/modal", "")
	if sel := decode[modal.Selection](t, resp.Data); sel.Open || sel.Item != nil {
		t.Fatalf("selection after close = %+v", sel)
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, gin.New())

	code, resp := env.do(t, http.MethodGet, "/api/health", "")

	if code != http.StatusOK || decode[map[string]string](t, resp.Data)["storage"] != "Connected" {
		t.Fatalf("health: %d %+v", code, resp)
	}
}
