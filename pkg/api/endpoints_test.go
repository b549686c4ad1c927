package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jonborges/menu4you/pkg/events"
	"github.com/jonborges/menu4you/pkg/fallback"
	"github.com/jonborges/menu4you/pkg/models"
	"github.com/jonborges/menu4you/pkg/redis"
)

func newLocalUsers(t *testing.T) *fallback.Users {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return fallback.NewUsers(fallback.NewKVStore(redis.NewStorage(client, "")))
}

func TestRegisterUsesBackendWhenReachable(t *testing.T) {
	r := gin.New()
	r.POST("/api/auth/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, models.AuthResponse{Token: "jwt", UserID: 41, Username: req.Username, Email: req.Email})
	})
	h := newHarness(t, r, WithFallback(newLocalUsers(t)))

	res, err := h.client.Register(context.Background(), models.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token != "jwt" || res.UserID != 41 {
		t.Fatalf("res = %+v", res)
	}
}

func TestAuthFallsBackWhenBackendUnreachable(t *testing.T) {
	h := newHarness(t, gin.New(), WithFallback(newLocalUsers(t)))
	h.server.Close()
	ctx := context.Background()

	reg, err := h.client.Register(ctx, models.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Token != "local-token-1" || reg.UserID != 1 {
		t.Fatalf("local registration = %+v", reg)
	}

	login, err := h.client.Login(ctx, models.LoginRequest{Username: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Username != "ana" {
		t.Fatalf("local login = %+v", login)
	}

	_, err = h.client.Register(ctx, models.RegisterRequest{Username: "ana", Email: "x@example.com", Password: "p"})
	var de *DomainError
	if !errors.As(err, &de) || de.Code != CodeDuplicateUser {
		t.Fatalf("duplicate register: %v", err)
	}

	_, err = h.client.Login(ctx, models.LoginRequest{Username: "ana", Password: "nope"})
	if !errors.As(err, &de) || de.Code != CodeInvalidCredentials {
		t.Fatalf("bad login: %v", err)
	}
	if !errors.Is(err, fallback.ErrInvalidCredentials) {
		t.Fatal("domain error should wrap the fallback sentinel")
	}
}

func TestAuthRejectionFromBackendIsFinal(t *testing.T) {
	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		c.String(http.StatusUnauthorized, "bad credentials")
	})
	h := newHarness(t, r, WithFallback(newLocalUsers(t)))

	_, err := h.client.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "x"})
	if StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("err = %v, want upstream 401", err)
	}
}

func TestCreateOrderSendsPayloadAndIdempotencyKey(t *testing.T) {
	var got models.OrderRequest
	var key string
	r := gin.New()
	r.POST("/orders", func(c *gin.Context) {
		key = c.GetHeader(IdempotencyHeader)
		if err := c.ShouldBindJSON(&got); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": 99, "total": "20.00", "status": "PENDING"})
	})
	h := newHarness(t, r)

	user, restaurant, table := int64(7), int64(3), 4
	order, err := h.client.CreateOrder(context.Background(), models.OrderRequest{
		UserID:       &user,
		RestaurantID: &restaurant,
		TableNumber:  &table,
		Items:        []models.OrderLine{{ItemID: 1, Quantity: 2}},
	}, "key-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != 99 || !order.Total.Equal(decimal.NewFromInt(20)) || order.Status != models.OrderPending {
		t.Fatalf("order = %+v", order)
	}
	if key != "key-1" {
		t.Fatalf("idempotency key = %q", key)
	}
	if *got.UserID != 7 || *got.TableNumber != 4 || len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestOrderPayloadSerializesNullsLikeTheWebClient(t *testing.T) {
	data, err := json.Marshal(models.OrderRequest{Items: []models.OrderLine{{ItemID: 1, Quantity: 1}}, GuestName: "Rita"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"userId":null,"restaurantId":null,"tableNumber":null,"items":[{"itemId":1,"quantity":1}],"guestName":"Rita"}`
	if string(data) != want {
		t.Fatalf("payload = %s", data)
	}
}

func TestEmployeesByRestaurantAcceptsHAL(t *testing.T) {
	r := gin.New()
	r.GET("/api/restaurants/:id/employees", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"_embedded": gin.H{"employees": []gin.H{{"id": 1, "name": "Rui", "role": "chef"}}}})
	})
	h := newHarness(t, r)

	list, err := h.client.EmployeesByRestaurant(context.Background(), 2)
	if err != nil {
		t.Fatalf("EmployeesByRestaurant: %v", err)
	}
	if len(list) != 1 || list[0].Role != "chef" {
		t.Fatalf("list = %+v", list)
	}
}

func TestCreateRestaurantPublishesEvent(t *testing.T) {
	r := gin.New()
	r.POST("/api/restaurants", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 12, "name": "Cantina", "tableCount": 10})
	})
	h := newHarness(t, r)

	var created events.Event
	h.client.bus.Subscribe(func(e events.Event) {
		if e.Kind == events.RestaurantCreated {
			created = e
		}
	})

	owner := int64(7)
	rest, err := h.client.CreateRestaurant(context.Background(), models.RestaurantRequest{Name: "Cantina", OwnerID: &owner})
	if err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}
	if rest.ID != 12 || created.RestaurantID != 12 {
		t.Fatalf("restaurant = %+v, event = %+v", rest, created)
	}
}

func TestSearchItemsEscapesQuery(t *testing.T) {
	var query string
	r := gin.New()
	r.GET("/api/items/search", func(c *gin.Context) {
		query = c.Query("name")
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Pão de queijo", "price": 5}})
	})
	h := newHarness(t, r)

	items, err := h.client.SearchItems(context.Background(), "pão & café")
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if query != "pão & café" || len(items) != 1 {
		t.Fatalf("query = %q, items = %+v", query, items)
	}
}

func TestUploadFileSendsMultipart(t *testing.T) {
	var received string
	r := gin.New()
	r.POST("/api/files/upload", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		f, _ := fh.Open()
		defer f.Close()
		data, _ := io.ReadAll(f)
		received = fh.Filename + ":" + string(data)
		c.JSON(http.StatusOK, gin.H{"url": "/files/" + fh.Filename})
	})
	h := newHarness(t, r)

	out, err := h.client.UploadFile(context.Background(), "cover.png", bytes.NewBufferString("PNG"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if received != "cover.png:PNG" || out["url"] != "/files/cover.png" {
		t.Fatalf("received = %q, out = %v", received, out)
	}
}
