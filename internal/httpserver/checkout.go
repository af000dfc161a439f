package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clothcycle/internal/domain"
	orderrepo "clothcycle/internal/repository/order"
	"clothcycle/internal/service/checkout"
)

func checkoutHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		var details checkout.DeliveryDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		ord, err := svc.Submit(c.Request.Context(), sess.Cart(), currentUserID(c), details)
		if err != nil {
			var vErr *checkout.ValidationError
			switch {
			case errors.As(err, &vErr):
				respond(c, sess, http.StatusBadRequest, gin.H{"errors": vErr.Fields})
			case errors.Is(err, checkout.ErrEmptyCart):
				respond(c, sess, http.StatusConflict, gin.H{"error": "cart is empty"})
			default:
				respond(c, sess, http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		respond(c, sess, http.StatusCreated, gin.H{"order": ord})
	}
}

func getOrderHandler(orders orderrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load order"})
			return
		}
		uid := currentUserID(c)
		if uid == nil || ord.UserID == nil || *ord.UserID != *uid {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": ord})
	}
}
