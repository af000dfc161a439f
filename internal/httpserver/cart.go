package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clothcycle/internal/domain"
)

type addCartItemRequest struct {
	Item domain.CartLineInput `json:"item"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func cartPayload(sess *Session) gin.H {
	return gin.H{
		"items":     sess.Cart().Lines(),
		"aggregate": sess.Cart().Aggregate(),
	}
}

func getCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		sess.Cart().Load(c.Request.Context())
		respond(c, sess, http.StatusOK, cartPayload(sess))
	}
}

func addCartItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Item.ListingID == "" {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "listingId is required"})
			return
		}
		sess.Cart().AddLine(c.Request.Context(), req.Item)
		respond(c, sess, http.StatusOK, cartPayload(sess))
	}
}

func updateCartItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		sess.Cart().SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity)
		respond(c, sess, http.StatusOK, cartPayload(sess))
	}
}

func removeCartItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		sess.Cart().RemoveLine(c.Request.Context(), c.Param("id"))
		respond(c, sess, http.StatusOK, cartPayload(sess))
	}
}

func clearCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		sess.Cart().Clear(c.Request.Context())
		respond(c, sess, http.StatusOK, cartPayload(sess))
	}
}
