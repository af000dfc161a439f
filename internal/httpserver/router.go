package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	listingrepo "clothcycle/internal/repository/listing"
	orderrepo "clothcycle/internal/repository/order"
	"clothcycle/internal/service/checkout"
	"clothcycle/internal/service/ngo"
)

// Deps carries everything the routes need.
type Deps struct {
	Verifier      TokenVerifier // nil disables token verification; all callers are guests
	Sessions      *Sessions
	CheckoutSvc   *checkout.Service
	NGOSvc        *ngo.Service
	Listings      listingrepo.Repository
	Orders        orderrepo.Repository
	ListingBucket string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", deviceHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.Use(identityMiddleware(deps.Verifier))

	api.POST("/devices", newDeviceHandler())

	api.GET("/listings", listListingsHandler(deps.Listings))
	api.GET("/listings/:id", getListingHandler(deps.Listings))

	api.POST("/ngo/applications", submitNGOApplicationHandler(deps.NGOSvc))

	authed := api.Group("")
	authed.Use(requireAuth())
	authed.GET("/orders/:id", getOrderHandler(deps.Orders))

	sess := api.Group("")
	sess.Use(sessionMiddleware(deps.Sessions))
	{
		sess.GET("/cart", getCartHandler())
		sess.POST("/cart/items", addCartItemHandler())
		sess.PATCH("/cart/items/:id", updateCartItemHandler())
		sess.DELETE("/cart/items/:id", removeCartItemHandler())
		sess.DELETE("/cart", clearCartHandler())

		sess.POST("/checkout", checkoutHandler(deps.CheckoutSvc))

		drafts := sess.Group("/drafts/:kind")
		drafts.Use(draftKindMiddleware())
		{
			drafts.GET("", getDraftHandler())
			drafts.POST("/details", setDraftDetailsHandler())
			drafts.POST("/location", setDraftLocationHandler())
			drafts.POST("/tier", selectDraftTierHandler())
			drafts.POST("/price", setDraftPriceHandler())
			drafts.POST("/photos", uploadDraftPhotosHandler(deps.ListingBucket))
			drafts.DELETE("/photos/:photoID", removeDraftPhotoHandler())
			drafts.POST("/next", draftNextHandler())
			drafts.POST("/back", draftBackHandler())
			drafts.POST("/submit", submitDraftHandler())
		}
	}

	admin := api.Group("/admin")
	admin.Use(requireAdmin())
	{
		admin.GET("/listings", listListingsHandler(deps.Listings))
		admin.PATCH("/listings/:id/status", setListingStatusHandler(deps.Listings))
		admin.GET("/ngo/applications", listNGOApplicationsHandler(deps.NGOSvc))
		admin.POST("/ngo/applications/:id/review", reviewNGOApplicationHandler(deps.NGOSvc))
	}

	return router
}
