package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nkoudou/veltrabackend/dto"
	"github.com/nkoudou/veltrabackend/enquiry"
	"github.com/nkoudou/veltrabackend/models"
	"github.com/nkoudou/veltrabackend/utils"
)

// ====== SubmitTradeEnquiry (public, no auth) ===============================
// POST /enquiries/trade
// The only two failures a genuine user can ever see are a validation error
// with field messages or a rate-limit message. Everything after the honeypot
// check is an operational concern, not a caller-facing one.
func SubmitTradeEnquiry(svc *enquiry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.TradeEnquiryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}

		outcome := svc.Submit(c.Request.Context(), utils.ClientIdentity(c.Request), body)

		switch outcome.Kind {
		case enquiry.OutcomeRateLimited:
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": outcome.Message})
		case enquiry.OutcomeRejected:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   outcome.Message,
				"details": outcome.Issues,
			})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": outcome.Message})
		}
	}
}

// ====== GetTradeEnquiries (admin) ===========================================
// GET /admin/trade-enquiries?page=1&limit=20&status=NEW&email=a@b.com&q=...
func GetTradeEnquiries(repo enquiry.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), defaultLimit)
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > maxLimit {
			limit = defaultLimit
		}

		items, total, err := repo.List(ctx, enquiry.ListFilter{
			Page:   page,
			Limit:  limit,
			Status: strings.TrimSpace(c.Query("status")),
			Email:  strings.TrimSpace(c.Query("email")),
			Query:  strings.TrimSpace(c.Query("q")),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trade enquiries"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"total": total,
			"page":  page,
			"limit": limit,
		})
	}
}

// GET /admin/trade-enquiries/:id
func GetTradeEnquiry(repo enquiry.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := repo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, enquiry.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "trade enquiry not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trade enquiry"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// PATCH /admin/trade-enquiries/:id/status
func UpdateTradeEnquiryStatus(repo enquiry.Repository) gin.HandlerFunc {
	valid := map[models.TradeEnquiryStatus]bool{
		models.TradeEnquiryStatusNew:        true,
		models.TradeEnquiryStatusInProgress: true,
		models.TradeEnquiryStatusAnswered:   true,
		models.TradeEnquiryStatusClosed:     true,
	}

	return func(c *gin.Context) {
		var body dto.UpdateTradeEnquiryStatusDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		status := models.TradeEnquiryStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
		if !valid[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		if err := repo.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
			if errors.Is(err, enquiry.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "trade enquiry not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}
