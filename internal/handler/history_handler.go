package handler

import (
	"net/http"
	"strconv"

	"github.com/hypnotizedent/printshop-os-sub002/internal/service"
	"github.com/hypnotizedent/printshop-os-sub002/pkg/pagination"
	"github.com/hypnotizedent/printshop-os-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	historyService service.HistoryService
}

func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/quote-history", h.GetHistory)
}

// GetHistory returns paginated quote history filtered by date range and attributes
// @Summary      Query quote history
// @Tags         quote-history
// @Produce      json
// @Param        page          query  int     false  "Page number (default: 1)"
// @Param        limit         query  int     false  "Items per page (default: 20)"
// @Param        from          query  string  false  "Start date YYYY-MM-DD (inclusive)"
// @Param        to            query  string  false  "End date YYYY-MM-DD (inclusive)"
// @Param        service       query  string  false  "Filter by service"
// @Param        min_quantity  query  int     false  "Minimum quantity"
// @Param        max_quantity  query  int     false  "Maximum quantity"
// @Param        fingerprint   query  string  false  "Exact request fingerprint"
// @Success      200  {object}  response.PaginatedResponse
// @Failure      400  {object}  response.Response
// @Router       /api/quote-history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	params := pagination.Parse(c)

	query := service.HistoryQuery{
		From:        c.Query("from"),
		To:          c.Query("to"),
		Service:     c.Query("service"),
		Fingerprint: c.Query("fingerprint"),
	}
	if v := c.Query("min_quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "min_quantity must be an integer"))
			return
		}
		query.MinQuantity = n
	}
	if v := c.Query("max_quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "max_quantity must be an integer"))
			return
		}
		query.MaxQuantity = n
	}

	entries, total, err := h.historyService.GetHistory(c.Request.Context(), query, params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, entries, params.Page, params.Limit, total))
}
