package router

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonborges/menu4you/pkg/global"
	"github.com/jonborges/menu4you/pkg/models"
)

// Catalog and owner-dashboard routes forward to the backend through the
// resilient client and re-wrap the result in the local envelope.

func respond(c *gin.Context, status int, data any, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, global.SuccessResponse(data))
}

func (h *Handler) GetRestaurants(c *gin.Context) {
	list, err := h.api.Restaurants(c.Request.Context())
	respond(c, http.StatusOK, list, err)
}

func (h *Handler) GetRestaurant(c *gin.Context) {
	r, err := h.api.Restaurant(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, r, err)
}

func (h *Handler) GetRestaurantByOwner(c *gin.Context) {
	r, err := h.api.RestaurantByOwner(c.Request.Context(), c.GetInt64("ownerId"))
	respond(c, http.StatusOK, r, err)
}

func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req models.RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Name is required", []global.ValidationError{
			{Field: "name", Message: "name is required", Code: "required"},
		}))
		return
	}
	if req.OwnerID == nil {
		req.OwnerID = h.session.Current().UserID
	}

	r, err := h.api.CreateRestaurant(c.Request.Context(), req)
	respond(c, http.StatusCreated, r, err)
}

func (h *Handler) UpdateRestaurant(c *gin.Context) {
	var req models.RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	r, err := h.api.UpdateRestaurant(c.Request.Context(), c.GetInt64("id"), req)
	respond(c, http.StatusOK, r, err)
}

func (h *Handler) GetRestaurantItems(c *gin.Context) {
	items, err := h.api.ItemsByRestaurant(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, items, err)
}

func (h *Handler) GetFeaturedItems(c *gin.Context) {
	items, err := h.api.FeaturedItems(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, items, err)
}

func (h *Handler) GetRestaurantEmployees(c *gin.Context) {
	list, err := h.api.EmployeesByRestaurant(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, list, err)
}

func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	orders, err := h.api.OrdersByRestaurant(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, orders, err)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	err := h.api.DeleteOrder(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, gin.H{"deleted": c.GetInt64("id")}, err)
}

func (h *Handler) SearchItems(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("name query parameter required", []global.ValidationError{
			{Field: "name", Message: "name query parameter is required", Code: "required"},
		}))
		return
	}
	items, err := h.api.SearchItems(c.Request.Context(), name)
	respond(c, http.StatusOK, items, err)
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if req.UserID == nil {
		req.UserID = h.session.Current().UserID
	}
	it, err := h.api.CreateItem(c.Request.Context(), req)
	respond(c, http.StatusCreated, it, err)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	it, err := h.api.UpdateItem(c.Request.Context(), c.GetInt64("id"), req)
	respond(c, http.StatusOK, it, err)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	err := h.api.DeleteItem(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, gin.H{"deleted": c.GetInt64("id")}, err)
}

func (h *Handler) GetEmployees(c *gin.Context) {
	list, err := h.api.Employees(c.Request.Context())
	respond(c, http.StatusOK, list, err)
}

func (h *Handler) GetEmployee(c *gin.Context) {
	e, err := h.api.Employee(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, e, err)
}

func (h *Handler) CreateEmployee(c *gin.Context) {
	var req models.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	e, err := h.api.CreateEmployee(c.Request.Context(), req)
	respond(c, http.StatusCreated, e, err)
}

func (h *Handler) UpdateEmployee(c *gin.Context) {
	var req models.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	e, err := h.api.UpdateEmployee(c.Request.Context(), c.GetInt64("id"), req)
	respond(c, http.StatusOK, e, err)
}

func (h *Handler) DeleteEmployee(c *gin.Context) {
	err := h.api.DeleteEmployee(c.Request.Context(), c.GetInt64("id"))
	respond(c, http.StatusOK, gin.H{"deleted": c.GetInt64("id")}, err)
}

func (h *Handler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("file is required", []global.ValidationError{
			{Field: "file", Message: err.Error(), Code: "required"},
		}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		log.Printf("Error opening uploaded file %s: %v", fh.Filename, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to read upload", nil))
		return
	}
	defer f.Close()

	out, err := h.api.UploadFile(c.Request.Context(), fh.Filename, f)
	respond(c, http.StatusCreated, out, err)
}
