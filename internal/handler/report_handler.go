package handler

import (
	"fmt"
	"net/http"

	"clothingstore/internal/middleware"
	"clothingstore/internal/model"
	"clothingstore/internal/service"
	"clothingstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports service.ReportService
	exports service.ExportService
	auth    *middleware.Auth
}

func NewReportHandler(reports service.ReportService, exports service.ExportService, auth *middleware.Auth) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports, auth: auth}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reportsGroup := router.Group("/api/reports", h.auth.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		reportsGroup.GET("/sales", h.GetSales)
		reportsGroup.GET("/inventory", h.GetInventory)
		reportsGroup.GET("/profit", h.GetProfit)
		reportsGroup.GET("/transactions-export", h.ExportTransactions)
		reportsGroup.GET("/inventory-export", h.ExportInventory)
	}
}

// @Summary      Sales report
// @Description  Completed orders grouped by period, with top products and totals
// @Tags         reports
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD, inclusive"
// @Param        end_date    query     string  false  "YYYY-MM-DD, inclusive"
// @Param        group_by    query     string  false  "day, week, month or year"  default(day)
// @Success      200         {object}  response.Response{data=service.SalesReport}
// @Failure      400         {object}  response.Response
// @Security     BearerAuth
// @Router       /api/reports/sales [get]
func (h *ReportHandler) GetSales(c *gin.Context) {
	res, err := h.reports.Sales(c.Request.Context(), service.ReportQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		GroupBy:   c.Query("group_by"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Inventory report
// @Tags         reports
// @Produce      json
// @Param        category_id  query     string  false  "Category ID"
// @Success      200          {object}  response.Response{data=service.InventoryReport}
// @Failure      400          {object}  response.Response
// @Security     BearerAuth
// @Router       /api/reports/inventory [get]
func (h *ReportHandler) GetInventory(c *gin.Context) {
	res, err := h.reports.Inventory(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Profit report
// @Description  Revenue, cost and margin per product over completed orders
// @Tags         reports
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD, inclusive"
// @Param        end_date    query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200         {object}  response.Response{data=service.ProfitReport}
// @Failure      400         {object}  response.Response
// @Security     BearerAuth
// @Router       /api/reports/profit [get]
func (h *ReportHandler) GetProfit(c *gin.Context) {
	res, err := h.reports.Profit(c.Request.Context(), service.ReportQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// @Summary      Export stock transactions
// @Description  Same filters as the transaction list, without pagination
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        type        query  string  false  "in, out or adjustment"
// @Param        search      query  string  false  "Product name, SKU or reason"
// @Param        start_date  query  string  false  "YYYY-MM-DD, inclusive"
// @Param        end_date    query  string  false  "YYYY-MM-DD, inclusive"
// @Success      200
// @Failure      400  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/reports/transactions-export [get]
func (h *ReportHandler) ExportTransactions(c *gin.Context) {
	file, err := h.exports.ExportTransactions(c.Request.Context(), transactionQueryFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	sendAttachment(c, file)
}

// @Summary      Export inventory
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        category_id  query  string  false  "Category ID"
// @Success      200
// @Failure      400  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/reports/inventory-export [get]
func (h *ReportHandler) ExportInventory(c *gin.Context) {
	file, err := h.exports.ExportInventory(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	sendAttachment(c, file)
}

func sendAttachment(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, service.XLSXContentType, file.Content)
}
