package handler

import (
	"net/http"
	"strconv"

	"clothingstore/internal/middleware"
	"clothingstore/internal/model"
	"clothingstore/internal/service"
	"clothingstore/pkg/pagination"
	"clothingstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	ledger       service.StockLedgerService
	transactions service.TransactionQueryService
	alerts       service.AlertService
	inventory    service.InventoryService
	auth         *middleware.Auth
}

func NewInventoryHandler(
	ledger service.StockLedgerService,
	transactions service.TransactionQueryService,
	alerts service.AlertService,
	inventory service.InventoryService,
	auth *middleware.Auth,
) *InventoryHandler {
	return &InventoryHandler{
		ledger:       ledger,
		transactions: transactions,
		alerts:       alerts,
		inventory:    inventory,
		auth:         auth,
	}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/api/inventory", h.auth.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		inventory.POST("/stock-in", h.StockIn)
		inventory.POST("/stock-out", h.StockOut)
		inventory.POST("/stock-adjust", h.StockAdjust)
		inventory.POST("/bulk-transaction", h.BulkTransaction)
		inventory.GET("/transactions", h.ListTransactions)
		inventory.GET("/alerts", h.GetAlerts)
		inventory.GET("/variants", h.ListVariants)
		inventory.GET("/summary", h.GetSummary)
	}
}

// StockIn handles receiving goods into a variant
// @Summary      Stock in
// @Description  Adds quantity to a variant and records an "in" ledger entry
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.StockInRequest  true  "Stock in payload"
// @Success      200      {object}  response.Response{data=service.StockInResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/stock-in [post]
func (h *InventoryHandler) StockIn(c *gin.Context) {
	var req service.StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.ledger.StockIn(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// StockOut handles removing goods from a variant
// @Summary      Stock out
// @Description  Removes quantity from a variant. Sales create a completed order.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.StockOutRequest  true  "Stock out payload"
// @Success      200      {object}  response.Response{data=service.StockOutResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/inventory/stock-out [post]
func (h *InventoryHandler) StockOut(c *gin.Context) {
	var req service.StockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.ledger.StockOut(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// StockAdjust sets a variant's stock to a counted value
// @Summary      Stock adjust
// @Description  Sets the absolute stock of a variant. No entry is written when nothing changes.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.StockAdjustRequest  true  "Stock adjust payload"
// @Success      200      {object}  response.Response{data=service.StockAdjustResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/stock-adjust [post]
func (h *InventoryHandler) StockAdjust(c *gin.Context) {
	var req service.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.ledger.StockAdjust(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// BulkTransaction applies a batch of movements atomically
// @Summary      Bulk transaction
// @Description  Applies every entry or none. Missing (product, size, color) variants are created.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BulkApplyRequest  true  "Bulk payload"
// @Success      200      {object}  response.Response{data=[]service.BulkEntryResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/bulk-transaction [post]
func (h *InventoryHandler) BulkTransaction(c *gin.Context) {
	var req service.BulkApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.ledger.BulkApply(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"count":   len(res),
		"results": res,
	}))
}

// ListTransactions pages through the stock ledger
// @Summary      List stock transactions
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number"  default(1)
// @Param        limit       query     int     false  "Page size"    default(20)
// @Param        type        query     string  false  "in, out or adjustment"
// @Param        product_id  query     string  false  "Product ID"
// @Param        variant_id  query     string  false  "Variant ID"
// @Param        user_id     query     string  false  "User ID"
// @Param        search      query     string  false  "Product name, SKU or reason"
// @Param        start_date  query     string  false  "YYYY-MM-DD, inclusive"
// @Param        end_date    query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200         {object}  response.Response{data=service.TransactionPage}
// @Failure      400         {object}  response.Response
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, limit, err := pagination.ParseRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	q := transactionQueryFrom(c)
	q.Page, q.Limit = page, limit

	res, err := h.transactions.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetAlerts lists variants at or below their minimum stock
// @Summary      Stock alerts
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query     string  false  "Category ID"
// @Success      200          {object}  response.Response{data=service.AlertReport}
// @Failure      400          {object}  response.Response
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) GetAlerts(c *gin.Context) {
	res, err := h.alerts.GetAlerts(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListVariants pages through variants with their stock status
// @Summary      List variant stock
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        page          query     int     false  "Page number"  default(1)
// @Param        limit         query     int     false  "Page size"    default(20)
// @Param        search        query     string  false  "Product name or SKU"
// @Param        category_id   query     string  false  "Category ID"
// @Param        low_stock     query     bool    false  "Only low stock"
// @Param        out_of_stock  query     bool    false  "Only out of stock"
// @Success      200           {object}  response.Response{data=service.VariantPage}
// @Router       /api/inventory/variants [get]
func (h *InventoryHandler) ListVariants(c *gin.Context) {
	lowStock, _ := strconv.ParseBool(c.Query("low_stock"))
	outOfStock, _ := strconv.ParseBool(c.Query("out_of_stock"))

	res, err := h.inventory.ListVariants(c.Request.Context(), service.VariantListQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		LowStock:   lowStock,
		OutOfStock: outOfStock,
		Page:       pagination.Parse(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetSummary returns stock totals per category and the latest movements
// @Summary      Inventory summary
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.InventorySummary}
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) GetSummary(c *gin.Context) {
	res, err := h.inventory.GetSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

func transactionQueryFrom(c *gin.Context) service.TransactionQuery {
	return service.TransactionQuery{
		Type:      c.Query("type"),
		ProductID: c.Query("product_id"),
		VariantID: c.Query("variant_id"),
		UserID:    c.Query("user_id"),
		Search:    c.Query("search"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
}
