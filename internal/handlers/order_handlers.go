package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NumanIbnMazid/restaurant-management/internal/middleware"
	"github.com/NumanIbnMazid/restaurant-management/internal/models"
	"github.com/NumanIbnMazid/restaurant-management/internal/services"
	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	Service services.OrderService
}

func NewOrderHandler(s services.OrderService) *OrderHandler {
	return &OrderHandler{Service: s}
}

// confirmRequest names the surviving items; everything else in the order is
// cancelled unless cancel_others is false.
type confirmRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.Service.CreateOrder(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, order, "Order created successfully")
}

func (h *OrderHandler) AddItems(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.Service.AddItems(orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Items added successfully")
}

func (h *OrderHandler) PlaceItems(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.Service.PlaceItems(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Order placed successfully")
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	h.confirm(c, true)
}

// ConfirmWithoutCancel confirms the listed items but leaves the rest of the
// order untouched instead of cancelling it.
func (h *OrderHandler) ConfirmWithoutCancel(c *gin.Context) {
	h.confirm(c, false)
}

func (h *OrderHandler) confirm(c *gin.Context, cancelOthers bool) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	callerID, ok := middleware.CallerID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "authentication required"))
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.Service.Confirm(callerID, orderID, req.ItemIDs, cancelOthers)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Order confirmed successfully")
}

func (h *OrderHandler) Serve(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ItemSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.Service.Serve(orderID, req.ItemIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Order served successfully")
}

func (h *OrderHandler) CancelItems(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ItemSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if len(req.ItemIDs) == 0 {
		utils.RespondValidationFailed(c, "item_ids must not be empty")
		return
	}

	order, err := h.Service.CancelItems(orderID, req.ItemIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Items cancelled successfully")
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.Service.CancelOrder(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Order cancelled successfully")
}

func (h *OrderHandler) CreateInvoice(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.Service.CreateInvoice(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, invoice, "Invoice created successfully")
}

func (h *OrderHandler) Pay(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	callerID, ok := middleware.CallerID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "authentication required"))
		return
	}

	invoice, err := h.Service.Pay(callerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, invoice, "Order paid successfully")
}

func (h *OrderHandler) Reorder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.Service.Reorder(orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, order, "Reorder created successfully")
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteOrder(orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Order deleted successfully")
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.Service.GetOrderByID(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Order fetched successfully")
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	filters := models.OrderFilters{Page: 1, PageSize: 20}

	if v := c.Query("restaurant_id"); v != "" {
		id, err := utils.StrToInt64(v)
		if err != nil {
			utils.RespondValidationFailed(c, "invalid restaurant_id parameter")
			return
		}
		filters.RestaurantID = &id
	}
	if v := c.Query("table_id"); v != "" {
		id, err := utils.StrToInt64(v)
		if err != nil {
			utils.RespondValidationFailed(c, "invalid table_id parameter")
			return
		}
		filters.TableID = &id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = &v
	}
	if v := c.Query("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			filters.Page = page
		}
	}
	if v := c.Query("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			filters.PageSize = size
		}
	}

	orders, totalCount, err := h.Service.GetOrders(filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"orders":      orders,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	}, "Orders fetched successfully")
}
