package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nkoudou/veltrabackend/cart"
	"github.com/nkoudou/veltrabackend/dto"
	"github.com/nkoudou/veltrabackend/models"
)

const cartSessionHeader = "X-Cart-Session"

// DocRenderer and DocUploader are the export collaborators; both external,
// both swappable in tests.
type DocRenderer interface {
	Render(ctx context.Context, items models.EnquiryList) ([]byte, error)
}

type DocUploader interface {
	UploadCartPDF(ctx context.Context, sessionID string, data []byte) (string, error)
}

func cartSession(c *gin.Context, sessions *cart.Sessions) (string, *cart.Session, bool) {
	id := c.GetHeader(cartSessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + cartSessionHeader + " header"})
		return "", nil, false
	}
	return id, sessions.Get(id), true
}

// GET /enquiry-cart
func GetCart(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": sess.Store.Read(c.Request.Context())})
	}
}

// POST /enquiry-cart/items
func AddCartItem(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		var body dto.AddEnquiryItemDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		list, err := sess.Store.Add(c.Request.Context(), body)
		if err != nil {
			if errors.Is(err, cart.ErrInvalidItem) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "productId and productTitle must not be empty"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
			return
		}
		sess.Changed.Publish()
		c.JSON(http.StatusCreated, gin.H{"items": list})
	}
}

// PATCH /enquiry-cart/items/:id
func UpdateCartItem(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		var body dto.UpdateEnquiryItemDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		list, err := sess.Store.Update(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
			return
		}
		sess.Changed.Publish()
		c.JSON(http.StatusOK, gin.H{"items": list})
	}
}

// DELETE /enquiry-cart/items/:id
func RemoveCartItem(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		list, err := sess.Store.Remove(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove item"})
			return
		}
		sess.Changed.Publish()
		c.JSON(http.StatusOK, gin.H{"items": list})
	}
}

// DELETE /enquiry-cart
func ClearCart(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		if err := sess.Store.Clear(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}
		sess.Changed.Publish()
		c.JSON(http.StatusOK, gin.H{"items": models.EnquiryList{}})
	}
}

// ====== CartEvents =========================================================
// GET /enquiry-cart/events is an SSE stream. Events carry no payload; surfaces
// re-fetch the snapshot themselves.
func CartEvents(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		flusher, canFlush := c.Writer.(http.Flusher)
		if !canFlush {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
			return
		}

		// Coalescing here is safe: a surface that wakes up re-reads the
		// whole snapshot anyway.
		changes := make(chan struct{}, 1)
		unsubscribe := sess.Changed.Subscribe(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)
		fmt.Fprint(c.Writer, "event: connected\ndata: {}\n\n")
		flusher.Flush()

		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-changes:
				fmt.Fprint(c.Writer, "event: cart-changed\ndata: {}\n\n")
				flusher.Flush()
			case <-heartbeat.C:
				fmt.Fprint(c.Writer, ": heartbeat\n\n")
				flusher.Flush()
			}
		}
	}
}

// ====== ExportCart =========================================================
// POST /enquiry-cart/export renders the cart through the external document
// service and parks the PDF in object storage, answering with its URL.
func ExportCart(sessions *cart.Sessions, renderer DocRenderer, uploader DocUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}
		if renderer == nil || uploader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export is not configured"})
			return
		}

		ctx := c.Request.Context()
		items := sess.Store.Read(ctx)
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		}

		data, err := renderer.Render(ctx, items)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "document rendering failed"})
			return
		}
		url, err := uploader.UploadCartPDF(ctx, sessionID, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "document upload failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// ====== Handoff ============================================================
// POST /enquiry-cart/handoff serializes the current cart into the one-shot
// slot before navigating to the trade form.
func WriteHandoff(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		items := sess.Store.Read(ctx)
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		}

		handoff := make([]models.HandoffItem, 0, len(items))
		for _, it := range items {
			handoff = append(handoff, models.HandoffItem{
				ProductTitle: it.ProductTitle,
				Quantity:     it.Quantity,
			})
		}
		raw, err := json.Marshal(handoff)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage handoff"})
			return
		}
		if err := sess.Handoff.Put(ctx, string(raw)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage handoff"})
			return
		}
		sess.PopulateForm.Publish()
		c.JSON(http.StatusOK, gin.H{"count": len(handoff)})
	}
}

// GET /enquiry-cart/handoff consumes the slot; a second read without a new
// write yields an empty list.
func ReadHandoff(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, sess, ok := cartSession(c, sessions)
		if !ok {
			return
		}

		raw, found, err := sess.Handoff.Take(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read handoff"})
			return
		}

		items := make([]models.HandoffItem, 0)
		if found {
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				// Stale or malformed slot: treat as consumed-empty.
				items = items[:0]
			}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
