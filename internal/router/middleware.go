package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonborges/menu4you/pkg/global"
	"github.com/jonborges/menu4you/pkg/session"
)

// IDParam parses the named path parameter as a positive id and stores it
// in the context under the same name.
func IDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(name), 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid "+name, []global.ValidationError{
				{Field: name, Message: name + " must be a positive integer", Code: "invalid_format"},
			}))
			c.Abort()
			return
		}
		c.Set(name, id)
		c.Next()
	}
}

// RequireLogin rejects owner operations while nobody is signed in.
func RequireLogin(sess *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sess.IsLoggedIn() {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Login required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
