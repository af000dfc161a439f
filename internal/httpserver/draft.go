package httpserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"clothcycle/internal/domain"
	"clothcycle/internal/service/draft"
	"clothcycle/internal/service/photo"
)

// draftKindMiddleware validates the :kind segment.
func draftKindMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.Param("kind")
		if kind != draft.KindSale && kind != draft.KindDonation {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown draft kind"})
			return
		}
		c.Next()
	}
}

func currentDraft(c *gin.Context) (*Session, *draft.Machine) {
	sess := currentSession(c)
	return sess, sess.Draft(c.Param("kind"))
}

func draftPayload(m *draft.Machine) gin.H {
	state := m.State()
	payload := gin.H{
		"draft":      state,
		"totalSteps": m.TotalSteps(),
	}
	if state.Tier == domain.TierX && state.TierXPrice > 0 {
		payload["weeklyHoldingFee"] = m.WeeklyHoldingFee()
	}
	return payload
}

func getDraftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

type draftDetailsRequest struct {
	Category       string `json:"category"`
	Size           string `json:"size"`
	Fabric         string `json:"fabric"`
	ConditionNotes string `json:"conditionNotes"`
	HasDefects     bool   `json:"hasDefects"`
}

func setDraftDetailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		var req draftDetailsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		m.SetDetails(req.Category, req.Size, req.Fabric, req.ConditionNotes, req.HasDefects)
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

type draftLocationRequest struct {
	City               string `json:"city"`
	Pincode            string `json:"pincode"`
	PickupAvailability string `json:"pickupAvailability"`
	Contact            string `json:"contact"`
}

func setDraftLocationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		var req draftLocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		m.SetLocation(req.City, req.Pincode, req.PickupAvailability, req.Contact)
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

func selectDraftTierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		var req struct {
			Tier string `json:"tier"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := m.SelectTier(req.Tier); err != nil {
			respond(c, sess, http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

func setDraftPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		var req struct {
			Price float64 `json:"price"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		var err error
		switch m.State().Tier {
		case domain.TierA:
			err = m.SetTierAPrice(req.Price)
		case domain.TierB:
			err = m.SetTierBPrice(req.Price)
		case domain.TierX:
			err = m.SetTierXPrice(req.Price)
		default:
			respond(c, sess, http.StatusUnprocessableEntity, gin.H{"error": "select a tier first"})
			return
		}
		if err != nil {
			respond(c, sess, http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

// uploadDraftPhotosHandler stages the posted images, uploads the accepted
// ones and attaches their references to the draft. Rejections come back per
// file so the caller can tell which of a batch failed.
func uploadDraftPhotosHandler(bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		pipeline := sess.Pipeline(c.Param("kind"))

		form, err := c.MultipartForm()
		if err != nil {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "expected multipart form"})
			return
		}
		fileHeaders := form.File["photos"]
		if len(fileHeaders) == 0 {
			respond(c, sess, http.StatusBadRequest, gin.H{"error": "no photos in request"})
			return
		}

		var files []photo.File
		for _, fh := range fileHeaders {
			f, err := fh.Open()
			if err != nil {
				respond(c, sess, http.StatusBadRequest, gin.H{"error": "could not read upload"})
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, photo.MaxFileSize+1))
			f.Close()
			if err != nil {
				respond(c, sess, http.StatusBadRequest, gin.H{"error": "could not read upload"})
				return
			}
			files = append(files, photo.File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		accepted, rejected, err := pipeline.Accept(files)
		if err != nil {
			respond(c, sess, http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		var attached []domain.Photo
		for _, ph := range accepted {
			url, err := pipeline.Commit(c.Request.Context(), ph.ID, bucket)
			if err != nil {
				pipeline.Remove(ph.ID)
				rejected = append(rejected, photo.Rejected{Name: ph.Filename, Reason: "upload failed"})
				continue
			}
			if err := m.AddPhoto(draft.PhotoRef{ID: ph.ID, URL: url, Filename: ph.Filename}); err != nil {
				pipeline.Remove(ph.ID)
				rejected = append(rejected, photo.Rejected{Name: ph.Filename, Reason: err.Error()})
				continue
			}
			ph.Uploaded = true
			ph.URL = url
			attached = append(attached, ph)
		}

		payload := draftPayload(m)
		payload["accepted"] = attached
		if len(rejected) > 0 {
			payload["rejected"] = rejected
		}
		respond(c, sess, http.StatusOK, payload)
	}
}

func removeDraftPhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		id := c.Param("photoID")
		sess.Pipeline(c.Param("kind")).Remove(id)
		m.RemovePhoto(id)
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

func draftNextHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		if err := m.Next(); err != nil {
			respond(c, sess, http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

func draftBackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		m.Back()
		respond(c, sess, http.StatusOK, draftPayload(m))
	}
}

func submitDraftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, m := currentDraft(c)
		listing, err := m.Submit(c.Request.Context())
		if err != nil {
			respond(c, sess, http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		respond(c, sess, http.StatusCreated, gin.H{"listing": listing})
	}
}
