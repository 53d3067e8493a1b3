package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
	"github.com/NumanIbnMazid/restaurant-management/internal/services"
	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// InvoiceHandler serves invoice lookups. Invoices are only created through
// order operations, so there is no create endpoint here.
type InvoiceHandler struct {
	Service services.InvoiceService
}

func NewInvoiceHandler(s services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Service: s}
}

// GetByToken fetches an invoice by its share token. The token is opaque, so
// this endpoint is safe to expose to customers without authentication.
func (h *InvoiceHandler) GetByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.RespondValidationFailed(c, "token parameter missing")
		return
	}

	invoice, err := h.Service.GetByToken(token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, invoice, "Invoice fetched successfully")
}

func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}

	filters := models.InvoiceFilters{RestaurantID: &restaurantID, Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	filters.RestaurantID = &restaurantID
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}

	invoices, totalCount, err := h.Service.GetInvoices(filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"invoices":    invoices,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	}, "Invoices fetched successfully")
}
