package router

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonborges/menu4you/pkg/api"
	"github.com/jonborges/menu4you/pkg/cart"
	"github.com/jonborges/menu4you/pkg/events"
	"github.com/jonborges/menu4you/pkg/global"
	"github.com/jonborges/menu4you/pkg/modal"
	"github.com/jonborges/menu4you/pkg/models"
	"github.com/jonborges/menu4you/pkg/notify"
	"github.com/jonborges/menu4you/pkg/session"
)

// Deps are the state holders the companion API exposes.
type Deps struct {
	API          *api.Client
	Session      *session.Manager
	Guests       *session.GuestStore
	Cart         *cart.Cart
	Toasts       *notify.Queue
	Modal        *modal.State
	Connectivity *events.Connectivity
	// Ping checks durable storage; nil skips the check.
	Ping func(ctx context.Context) error
}

type Handler struct {
	api          *api.Client
	session      *session.Manager
	guests       *session.GuestStore
	cart         *cart.Cart
	toasts       *notify.Queue
	modal        *modal.State
	connectivity *events.Connectivity
	ping         func(ctx context.Context) error
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		api:          d.API,
		session:      d.Session,
		guests:       d.Guests,
		cart:         d.Cart,
		toasts:       d.Toasts,
		modal:        d.Modal,
		connectivity: d.Connectivity,
		ping:         d.Ping,
	}
}

// fail renders err with the status its type calls for.
func fail(c *gin.Context, err error) {
	var de *api.DomainError
	var ne *api.NetworkError
	var he *api.HTTPError

	switch {
	case errors.As(err, &de):
		status := http.StatusBadRequest
		if de.Code == api.CodeDuplicateUser || de.Code == api.CodeCheckoutInProgress {
			status = http.StatusConflict
		}
		c.JSON(status, global.ErrorResponse(de.Message, []global.ValidationError{
			{Field: "request", Message: de.Error(), Code: de.Code},
		}))
	// Checked before HTTPError: an exhausted 5xx is a NetworkError wrapping one.
	case errors.As(err, &ne):
		c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Backend unavailable", nil))
	case errors.As(err, &he):
		c.JSON(he.StatusCode, global.ErrorResponse(he.Error(), nil))
	case errors.Is(err, api.ErrMalformedResponse):
		log.Printf("Error: malformed backend response: %v", err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Malformed backend response", nil))
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Internal error", nil))
	}
}

func badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "json_parse_error"},
	}))
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := map[string]string{"status": "OK", "backend": h.api.BaseURL()}
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			log.Printf("Error pinging storage: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Storage connection failed", nil))
			return
		}
		status["storage"] = "Connected"
	}
	c.JSON(http.StatusOK, global.SuccessResponse(status))
}

// Status drives the offline banner.
func (h *Handler) Status(c *gin.Context) {
	out := gin.H{"offline": h.connectivity.Offline()}
	if since := h.connectivity.Since(); !since.IsZero() {
		out["since"] = since.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, global.SuccessResponse(out))
}

func (h *Handler) GetSession(c *gin.Context) {
	cur := h.session.Current()
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"loggedIn": cur.IsLoggedIn(),
		"session":  cur,
	}))
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	auth, err := h.api.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.signIn(c, auth, http.StatusCreated)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	auth, err := h.api.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.signIn(c, auth, http.StatusOK)
}

func (h *Handler) signIn(c *gin.Context, auth *models.AuthResponse, status int) {
	if err := h.session.Login(c.Request.Context(), auth.Token, auth.UserID, auth.Username, auth.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, global.SuccessResponse(h.session.Current()))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		// Memory is already cleared; the user is logged out either way.
		log.Printf("Warning: logout left stored session keys: %v", err)
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"loggedIn": false}))
}

func (h *Handler) GetGuest(c *gin.Context) {
	name, err := h.guests.Load(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"name": name}))
}

type guestRequest struct {
	Name string `json:"name"`
}

func (h *Handler) SaveGuest(c *gin.Context) {
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := h.guests.Save(c.Request.Context(), req.Name); err != nil {
		fail(c, err)
		return
	}
	h.GetGuest(c)
}

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.cart.Snapshot()))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var item models.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badJSON(c, err)
		return
	}
	if item.UnitPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid price", []global.ValidationError{
			{Field: "price", Message: "price must not be negative", Code: "invalid_value"},
		}))
		return
	}

	h.cart.AddItem(item)
	c.JSON(http.StatusOK, global.SuccessResponse(h.cart.Snapshot()))
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets a line's quantity, clamped to at least 1. Removing a
// line goes through RemoveFromCart.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	h.cart.UpdateQuantity(c.GetInt64("itemId"), max(req.Quantity, 1))
	c.JSON(http.StatusOK, global.SuccessResponse(h.cart.Snapshot()))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	h.cart.RemoveItem(c.GetInt64("itemId"))
	c.JSON(http.StatusOK, global.SuccessResponse(h.cart.Snapshot()))
}

func (h *Handler) ClearCart(c *gin.Context) {
	h.cart.Clear()
	c.JSON(http.StatusOK, global.SuccessResponse(h.cart.Snapshot()))
}

type tableRequest struct {
	RestaurantID int64 `json:"restaurantId" binding:"required,min=1"`
	TableNumber  int   `json:"tableNumber" binding:"required,min=1"`
}

// BindTable is hit when a table QR code is scanned. The table number is
// checked against the restaurant when the backend can be reached.
func (h *Handler) BindTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	ctx := c.Request.Context()

	restaurant, err := h.api.Restaurant(ctx, req.RestaurantID)
	switch {
	case err == nil:
		if !restaurant.HasTable(req.TableNumber) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown table", []global.ValidationError{
				{Field: "tableNumber", Message: "restaurant has no such table", Code: "not_found"},
			}))
			return
		}
	case api.IsNetworkError(err):
		log.Printf("Warning: binding table %d without checking restaurant %d: %v", req.TableNumber, req.RestaurantID, err)
	default:
		fail(c, err)
		return
	}

	if err := h.cart.BindTable(ctx, req.RestaurantID, req.TableNumber); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.cart.Snapshot()))
}

type checkoutRequest struct {
	GuestName string `json:"guestName"`
}

// Checkout places the order as the signed-in user, or as a guest under the
// given or remembered name. The outcome is also shown as a toast.
func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c, err)
			return
		}
	}
	ctx := c.Request.Context()

	sess := h.session.Current()
	guestName := ""
	if !sess.IsLoggedIn() {
		guestName = req.GuestName
		if guestName != "" {
			if err := h.guests.Save(ctx, guestName); err != nil {
				log.Printf("Warning: failed to remember guest name: %v", err)
			}
		} else if stored, err := h.guests.Load(ctx); err == nil {
			guestName = stored
		}
	}

	order, err := h.cart.Checkout(ctx, sess.UserID, guestName)
	if err != nil {
		h.toast(checkoutFailureMessage(err), notify.Error)
		fail(c, err)
		return
	}
	h.toast("Order placed!", notify.Info)
	c.JSON(http.StatusCreated, global.SuccessResponse(order))
}

func checkoutFailureMessage(err error) string {
	var de *api.DomainError
	switch {
	case errors.As(err, &de):
		return de.Message
	case api.IsNetworkError(err):
		return "Could not reach the restaurant. Please try again."
	default:
		return "Checkout failed: " + err.Error()
	}
}

func (h *Handler) toast(message string, kind notify.Kind) {
	if _, err := h.toasts.Show(message, kind, 0); err != nil {
		log.Printf("Warning: failed to show toast: %v", err)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.toasts.List()))
}

type notificationRequest struct {
	Message    string `json:"message" binding:"required"`
	Kind       string `json:"kind"`
	DurationMS int    `json:"durationMs"`
}

func (h *Handler) ShowNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	kind, err := notify.ParseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid kind", []global.ValidationError{
			{Field: "kind", Message: err.Error(), Code: "invalid_value"},
		}))
		return
	}

	t, err := h.toasts.Show(req.Message, kind, time.Duration(req.DurationMS)*time.Millisecond)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(t))
}

func (h *Handler) DismissNotification(c *gin.Context) {
	if !h.toasts.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Notification not found", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.toasts.List()))
}

func (h *Handler) GetModal(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.modal.Selection()))
}

type modalRequest struct {
	Item         models.Item `json:"item"`
	RestaurantID *int64      `json:"restaurantId"`
}

func (h *Handler) OpenModal(c *gin.Context) {
	var req modalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := req.Item.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid item", []global.ValidationError{
			{Field: "item", Message: err.Error(), Code: "invalid_value"},
		}))
		return
	}

	h.modal.Open(req.Item, req.RestaurantID)
	c.JSON(http.StatusOK, global.SuccessResponse(h.modal.Selection()))
}

func (h *Handler) CloseModal(c *gin.Context) {
	h.modal.Close()
	c.JSON(http.StatusOK, global.SuccessResponse(h.modal.Selection()))
}
