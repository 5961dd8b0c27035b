package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quality-control-backend/internal/model"
)

// productListResponse wraps a paginated product listing.
type productListResponse struct {
	Products   []model.Product `json:"products"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int64           `json:"total"`
}

// GetProducts handles GET /api/products with pagination and search.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		perPage := 50
		search := c.Query("search")

		q := db.Model(&model.Product{})
		if search != "" {
			pattern := "%" + search + "%"
			q = q.Where("name LIKE ? OR drawing_number LIKE ? OR comments LIKE ?", pattern, pattern, pattern)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}

		var products []model.Product
		if err := q.Preload("Mold").Order("name").
			Limit(perPage).Offset((page - 1) * perPage).
			Find(&products).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
			return
		}

		totalPages := int((total + int64(perPage) - 1) / int64(perPage))
		c.JSON(http.StatusOK, productListResponse{
			Products:   products,
			Page:       page,
			TotalPages: totalPages,
			Total:      total,
		})
	}
}

type createProductRequest struct {
	Name          string `json:"name" binding:"required"`
	DrawingNumber string `json:"drawing_number" binding:"required"`
	Comments      string `json:"comments"`
}

// PostProduct handles POST /api/products. A mold is created alongside the
// product.
func (h *Handler) PostProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.CreateProduct(c.Request.Context(), req.Name, req.DrawingNumber, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// DeleteProduct handles DELETE /api/products/:product_id.
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.store.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDimensions handles GET /api/products/:product_id/dimensions.
func GetDimensions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var dimensions []model.Dimension
		if err := db.Where("product_id = ?", productID).Order("name").Find(&dimensions).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dimensions"})
			return
		}
		c.JSON(http.StatusOK, dimensions)
	}
}

type dimensionRequest struct {
	Name           string  `json:"name" binding:"required"`
	NominalValue   float64 `json:"nominal_value"`
	ToleranceMinus float64 `json:"tolerance_minus"`
	TolerancePlus  float64 `json:"tolerance_plus"`
}

// PostDimension handles POST /api/products/:product_id/dimensions.
func (h *Handler) PostDimension(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req dimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ToleranceMinus < 0 || req.TolerancePlus < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tolerances must be non-negative"})
		return
	}

	dimension := model.Dimension{
		ProductID:      productID,
		Name:           req.Name,
		NominalValue:   req.NominalValue,
		ToleranceMinus: req.ToleranceMinus,
		TolerancePlus:  req.TolerancePlus,
	}
	if err := h.store.DB().Create(&dimension).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Dimension name must be unique within a product"})
		return
	}
	c.JSON(http.StatusCreated, dimension)
}

// PutDimension handles PUT /api/dimensions/:dimension_id.
func (h *Handler) PutDimension(c *gin.Context) {
	dimensionID, err := strconv.ParseInt(c.Param("dimension_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dimension ID"})
		return
	}

	var req dimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.store.DB().Model(&model.Dimension{}).Where("id = ?", dimensionID).Updates(map[string]any{
		"name":            req.Name,
		"nominal_value":   req.NominalValue,
		"tolerance_minus": req.ToleranceMinus,
		"tolerance_plus":  req.TolerancePlus,
	})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "dimension not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDimension handles DELETE /api/dimensions/:dimension_id. Measurements
// recorded against the dimension are removed with it.
func (h *Handler) DeleteDimension(c *gin.Context) {
	dimensionID, err := strconv.ParseInt(c.Param("dimension_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dimension ID"})
		return
	}

	err = h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dimension_id = ?", dimensionID).Delete(&model.Measurement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Dimension{}, dimensionID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
