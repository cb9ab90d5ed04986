package transport

import (
	"net/http"
	"strconv"

	"github.com/AirTechNEO/coworkconnect/internal/service"
	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService service.RoomService
}

func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// SearchRooms возвращает страницу комнат со свободными слотами
func (h *RoomHandler) SearchRooms(c *gin.Context) {
	var query service.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query: "+err.Error())
		return
	}

	page, err := h.roomService.Search(c.Request.Context(), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Rooms retrieved successfully",
		Data:    page.Results,
		Meta: map[string]interface{}{
			"page":         page.Page,
			"totalPages":   page.TotalPages,
			"totalResults": page.TotalResults,
		},
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "Invalid room ID")
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Room retrieved successfully",
		Data:    room,
	})
}
