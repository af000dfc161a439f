package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clothcycle/internal/domain"
	listingrepo "clothcycle/internal/repository/listing"
)

func listListingsHandler(listings listingrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", domain.ListingStatusApproved)
		if !validListingStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		out, err := listings.ListByStatus(c.Request.Context(), status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load listings"})
			return
		}
		if out == nil {
			out = []domain.Listing{}
		}
		c.JSON(http.StatusOK, gin.H{"listings": out})
	}
}

func getListingHandler(listings listingrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := listings.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load listing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"listing": l})
	}
}

func setListingStatusHandler(listings listingrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if !validListingStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		if err := listings.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update listing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": req.Status})
	}
}

func validListingStatus(status string) bool {
	switch status {
	case domain.ListingStatusPending, domain.ListingStatusApproved, domain.ListingStatusRejected:
		return true
	}
	return false
}
