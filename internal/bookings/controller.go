package bookings

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// SubmitBooking handles POST /api/v1/bookings
func (c *Controller) SubmitBooking(ctx *gin.Context) {
	purchaser, ok := purchaserFromContext(ctx)
	if !ok {
		return
	}

	var req SubmitBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := c.service.SubmitBooking(ctx.Request.Context(), purchaser, req)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Booking successful",
		"data":    response,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	purchaser, ok := purchaserFromContext(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, purchaser.ID)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	purchaser, ok := purchaserFromContext(ctx)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), purchaser.ID, limit, offset)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": bookings})
}

// respondBookingError maps the booking error taxonomy onto HTTP status codes.
func respondBookingError(ctx *gin.Context, err error) {
	bookingErr, ok := AsBookingError(err)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Booking failed"})
		return
	}

	status := http.StatusBadRequest
	switch bookingErr.Kind {
	case ErrKindNotFound:
		status = http.StatusNotFound
	case ErrKindSeatUnavailable:
		status = http.StatusConflict
	case ErrKindTransient:
		status = http.StatusServiceUnavailable
	}

	payload := gin.H{
		"error": bookingErr.Detail,
		"kind":  bookingErr.Kind,
	}
	if bookingErr.Seat != "" {
		payload["seat_id"] = bookingErr.Seat
	}

	ctx.JSON(status, payload)
}

// purchaserFromContext builds the purchaser identity from the claims the JWT
// middleware stored on the request context.
func purchaserFromContext(ctx *gin.Context) (Purchaser, bool) {
	userIDInterface, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return Purchaser{}, false
	}

	userIDStr, ok := userIDInterface.(string)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return Purchaser{}, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return Purchaser{}, false
	}

	return Purchaser{
		ID:    userID,
		Name:  ctx.GetString("user_name"),
		Email: ctx.GetString("user_email"),
	}, true
}
