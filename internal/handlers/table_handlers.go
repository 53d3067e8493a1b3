package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NumanIbnMazid/restaurant-management/internal/services"
	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// TableHandler serves the floor plan and table-side staff calls.
type TableHandler struct {
	Service services.TableService
}

func NewTableHandler(s services.TableService) *TableHandler {
	return &TableHandler{Service: s}
}

type callStaffRequest struct {
	Message string `json:"message"`
}

func (h *TableHandler) ListTables(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tables, err := h.Service.ListTables(restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, tables, "Tables fetched successfully")
}

func (h *TableHandler) CallStaff(c *gin.Context) {
	tableID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req callStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.Service.CallStaff(tableID, req.Message); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Staff called successfully")
}

func (h *TableHandler) CallForPayment(c *gin.Context) {
	tableID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.CallForPayment(tableID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Payment call sent successfully")
}
