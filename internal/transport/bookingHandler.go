package transport

import (
	"net/http"
	"strconv"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	planner    service.Planner
	reconciler service.Reconciler
	ledger     service.Ledger
}

func NewBookingHandler(planner service.Planner, reconciler service.Reconciler, ledger service.Ledger) *BookingHandler {
	return &BookingHandler{
		planner:    planner,
		reconciler: reconciler,
		ledger:     ledger,
	}
}

// Book создает бронирование для текущего пользователя
func (h *BookingHandler) Book(c *gin.Context) {
	var req entity.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.planner.Book(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Booking created successfully",
		Data:    booking,
	})
}

// GetUserBookings возвращает историю бронирований, ?hasComment=true оставляет только прокомментированные
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	onlyCommented := false
	if raw := c.Query("hasComment"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "hasComment must be a boolean")
			return
		}
		onlyCommented = v
	}

	bookings, err := h.ledger.History(c.Request.Context(), currentUser(c), onlyCommented)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Bookings retrieved successfully",
		Data:    bookings,
		Meta: map[string]interface{}{
			"total": len(bookings),
		},
	})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := h.ledger.Get(c.Request.Context(), currentUser(c), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Booking retrieved successfully",
		Data:    booking,
	})
}

// CancelBooking отменяет бронирование и возвращает места
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := h.reconciler.Cancel(c.Request.Context(), currentUser(c), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Booking cancelled successfully",
		Data:    booking,
	})
}

func (h *BookingHandler) CommentBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	var req entity.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	comment, err := h.ledger.Comment(c.Request.Context(), currentUser(c), bookingID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Comment added successfully",
		Data:    comment,
	})
}

func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}
