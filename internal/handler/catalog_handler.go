package handler

import (
	"net/http"

	"clothingstore/internal/middleware"
	"clothingstore/internal/model"
	"clothingstore/internal/service"
	"clothingstore/pkg/pagination"
	"clothingstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog service.CatalogService
	auth    *middleware.Auth
}

func NewCatalogHandler(catalog service.CatalogService, auth *middleware.Auth) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, auth: auth}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := h.auth.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	write := h.auth.RequireRole(model.RoleAdmin, model.RoleManager)

	api := router.Group("/api")
	{
		api.GET("/categories", read, h.ListCategories)
		api.POST("/categories", write, h.CreateCategory)

		api.GET("/products", read, h.ListProducts)
		api.POST("/products", write, h.CreateProduct)
		api.GET("/products/:id", read, h.GetProduct)
		api.PUT("/products/:id", write, h.UpdateProduct)
		api.DELETE("/products/:id", write, h.DeleteProduct)

		api.GET("/products/:id/variants", read, h.ListVariants)
		api.POST("/products/:id/variants", write, h.CreateVariant)
		api.PUT("/variants/:id", write, h.UpdateVariant)
		api.DELETE("/variants/:id", write, h.DeleteVariant)
	}
}

// ListCategories
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Category}
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory
// @Summary      Create a category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCategoryRequest  true  "Category"
// @Success      201      {object}  response.Response{data=model.Category}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// ListProducts handles retrieving paginated active products
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        search       query     string  false  "Name or SKU"
// @Param        category_id  query     string  false  "Category ID"
// @Success      200          {object}  response.Response{data=service.ProductPage}
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	res, err := h.catalog.ListProducts(c.Request.Context(), service.ProductListQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		Page:       pagination.Parse(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// CreateProduct
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// GetProduct returns a product with its variants
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProduct
// @Summary      Update a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct deactivates a product; its history is kept
// @Summary      Delete a product
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Product deleted successfully"}))
}

// ListVariants
// @Summary      List a product's variants
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=[]model.ProductVariant}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id}/variants [get]
func (h *CatalogHandler) ListVariants(c *gin.Context) {
	variants, err := h.catalog.ListVariants(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, variants))
}

// CreateVariant adds a size/color combination with zero stock
// @Summary      Create a variant
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.CreateVariantRequest  true  "Variant"
// @Success      201      {object}  response.Response{data=model.ProductVariant}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/products/{id}/variants [post]
func (h *CatalogHandler) CreateVariant(c *gin.Context) {
	var req service.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	variant, err := h.catalog.CreateVariant(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, variant))
}

// UpdateVariant changes size, color or min stock. Stock itself goes through the ledger.
// @Summary      Update a variant
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Variant ID"
// @Param        payload  body      service.UpdateVariantRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=model.ProductVariant}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/variants/{id} [put]
func (h *CatalogHandler) UpdateVariant(c *gin.Context) {
	var req service.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	variant, err := h.catalog.UpdateVariant(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, variant))
}

// DeleteVariant
// @Summary      Delete a variant
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Variant ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/variants/{id} [delete]
func (h *CatalogHandler) DeleteVariant(c *gin.Context) {
	if err := h.catalog.DeleteVariant(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Variant deleted successfully"}))
}
