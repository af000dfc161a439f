package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"clothcycle/internal/domain"
	"clothcycle/internal/service/ngo"
)

// maxNGODocSize caps one uploaded registration document.
const maxNGODocSize = 10 << 20

func submitNGOApplicationHandler(svc *ngo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form"})
			return
		}
		field := func(name string) string {
			if vals := form.Value[name]; len(vals) > 0 {
				return vals[0]
			}
			return ""
		}
		app := ngo.Application{
			NGOName:            field("ngoName"),
			RegistrationNumber: field("registrationNumber"),
			ContactPerson:      field("contactPerson"),
			ContactEmail:       field("contactEmail"),
			ContactPhone:       field("contactPhone"),
			ServiceArea:        field("serviceArea"),
			OperationalDetails: field("operationalDetails"),
		}

		var docs []ngo.Document
		for _, fh := range form.File["documents"] {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read document"})
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, maxNGODocSize+1))
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read document"})
				return
			}
			if len(data) > maxNGODocSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": fh.Filename + " exceeds 10MB"})
				return
			}
			docs = append(docs, ngo.Document{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		created, err := svc.Submit(c.Request.Context(), app, docs)
		if err != nil {
			var vErr *ngo.ValidationError
			if errors.As(err, &vErr) {
				c.JSON(http.StatusBadRequest, gin.H{"errors": vErr.Fields})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit application"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"application": created})
	}
}

func listNGOApplicationsHandler(svc *ngo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load applications"})
			return
		}
		if apps == nil {
			apps = []domain.NGOApplication{}
		}
		c.JSON(http.StatusOK, gin.H{"applications": apps})
	}
}

func reviewNGOApplicationHandler(svc *ngo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Approve    bool   `json:"approve"`
			AdminNotes string `json:"adminNotes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		uid := currentUserID(c)
		if uid == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if err := svc.Review(c.Request.Context(), c.Param("id"), req.Approve, req.AdminNotes, *uid); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not review application"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reviewed"})
	}
}
