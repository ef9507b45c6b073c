package handlers

import (
	"net/http"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/services"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.productService.Create(req)
	if err != nil {
		respondError(c, err, "CreateProduct: error from productService.Create")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	list, err := h.productService.FindAll(models.ProductFilters{
		Category:  c.Query("category"),
		Available: utils.ParseOptionalBool(c.Query("available")),
		Search:    c.Query("search"),
	})
	if err != nil {
		respondError(c, err, "GetProducts: error from productService.FindAll")
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.productService.Categories())
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	p, err := h.productService.FindOne(c.Param("id"))
	if err != nil {
		respondError(c, err, "GetProductByID: error from productService.FindOne")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.productService.FindBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err, "GetProductBySlug: error from productService.FindBySlug")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.productService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err, "UpdateProduct: error from productService.Update")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.Remove(c.Param("id")); err != nil {
		respondError(c, err, "DeleteProduct: error from productService.Remove")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}

func (h *ProductHandler) ToggleAvailability(c *gin.Context) {
	p, err := h.productService.ToggleAvailability(c.Param("id"))
	if err != nil {
		respondError(c, err, "ToggleAvailability: error from productService.ToggleAvailability")
		return
	}
	c.JSON(http.StatusOK, p)
}
