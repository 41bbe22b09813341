package handler

import (
	"net/http"

	"github.com/hypnotizedent/printshop-os-sub002/internal/service"
	"github.com/hypnotizedent/printshop-os-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/api/quotes")
	{
		quotes.POST("", h.ComputeQuote)
	}
}

// ComputeQuote prices a quote request against the active rule set
// @Summary      Compute a quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ComputeQuoteRequest  true  "Quote request"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/quotes [post]
func (h *QuoteHandler) ComputeQuote(c *gin.Context) {
	var req service.ComputeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.ComputeQuote(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
