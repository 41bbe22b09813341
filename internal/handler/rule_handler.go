package handler

import (
	"net/http"

	"github.com/hypnotizedent/printshop-os-sub002/internal/service"
	"github.com/hypnotizedent/printshop-os-sub002/pkg/pagination"
	"github.com/hypnotizedent/printshop-os-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	ruleService service.RuleService
}

func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

func (h *RuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/pricing-rules")
	{
		rules.GET("", h.ListRules)
		rules.GET("/:id", h.GetRule)
		rules.POST("", h.CreateRule)
		rules.PUT("/:id", h.UpdateRule)
		rules.DELETE("/:id", h.DeleteRule)
	}

	router.GET("/api/ruleset/version", h.GetRuleSetVersion)
}

// ListRules returns paginated pricing rules ordered by precedence
// @Summary      List pricing rules
// @Tags         pricing-rules
// @Produce      json
// @Param        page     query  int     false  "Page number (default: 1)"
// @Param        limit    query  int     false  "Items per page (default: 20)"
// @Param        active   query  bool    false  "Only active rules"
// @Param        service  query  string  false  "Filter by targeted service"
// @Success      200  {object}  response.PaginatedResponse
// @Router       /api/pricing-rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.RuleListFilter{
		ActiveOnly: c.Query("active") == "true",
		Service:    c.Query("service"),
	}

	rules, total, err := h.ruleService.GetRules(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rules, params.Page, params.Limit, total))
}

// GetRule returns a single pricing rule
// @Summary      Get pricing rule
// @Tags         pricing-rules
// @Produce      json
// @Param        id  path  string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pricing-rules/{id} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// CreateRule creates a pricing rule and bumps the rule-set version
// @Summary      Create pricing rule
// @Tags         pricing-rules
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateRuleRequest  true  "Rule payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/pricing-rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req service.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// UpdateRule updates a pricing rule and bumps the rule-set version
// @Summary      Update pricing rule
// @Tags         pricing-rules
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Rule ID"
// @Param        payload  body  service.UpdateRuleRequest  true  "Rule payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/pricing-rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req service.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeleteRule removes a pricing rule and bumps the rule-set version
// @Summary      Delete pricing rule
// @Tags         pricing-rules
// @Produce      json
// @Param        id  path  string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pricing-rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	if err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// GetRuleSetVersion returns the current rule-set version counter
// @Summary      Get rule-set version
// @Tags         pricing-rules
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/ruleset/version [get]
func (h *RuleHandler) GetRuleSetVersion(c *gin.Context) {
	version, err := h.ruleService.RuleSetVersion(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"version": version}))
}

// actorID reads the opaque actor identity the fronting gateway forwards.
// Authentication itself happens upstream; an empty value means an
// unattributed caller.
func actorID(c *gin.Context) string {
	return c.GetHeader("X-Actor-ID")
}
