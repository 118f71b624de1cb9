package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roshshop/backend/models"
	"github.com/roshshop/backend/repository"
)

const (
	productListCacheKey = "products:all"
	productListCacheTTL = 5 * time.Minute
)

type ProductController struct {
	Repo   repository.ProductRepository
	Cache  *redis.Client
	Logger *zap.Logger
}

func NewProductController(repo repository.ProductRepository, cache *redis.Client, logger *zap.Logger) *ProductController {
	return &ProductController{
		Repo:   repo,
		Cache:  cache,
		Logger: logger,
	}
}

type createProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=0"`
	Stock       int    `json:"stock" binding:"min=0"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// ListProducts serves the catalog, newest first, through a Redis read-through
// cache.
func (pc *ProductController) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if pc.Cache != nil {
		if cached, err := pc.Cache.Get(ctx, productListCacheKey).Result(); err == nil {
			var products []models.Product
			if json.Unmarshal([]byte(cached), &products) == nil {
				c.JSON(http.StatusOK, gin.H{"products": products})
				return
			}
		}
	}

	products, err := pc.Repo.FindAll(ctx)
	if err != nil {
		pc.Logger.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	if pc.Cache != nil {
		if data, err := json.Marshal(products); err == nil {
			if err := pc.Cache.Set(ctx, productListCacheKey, data, productListCacheTTL).Err(); err != nil {
				pc.Logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := pc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	}

	if err := pc.Repo.Create(c.Request.Context(), &product); err != nil {
		pc.Logger.Error("failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	pc.invalidateCache(c)
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// Stock is mutated only by the order flow and the explicit admin field;
	// drop anything else the client sent.
	allowed := map[string]bool{
		"name": true, "description": true, "price": true, "stock": true,
		"image_url": true, "category": true, "subcategory": true,
	}
	for key := range updates {
		if !allowed[key] {
			delete(updates, key)
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no updatable fields"})
		return
	}

	product, err := pc.Repo.Update(c.Request.Context(), id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	pc.invalidateCache(c)
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := pc.Repo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	pc.invalidateCache(c)
	c.Status(http.StatusNoContent)
}

func (pc *ProductController) invalidateCache(c *gin.Context) {
	if pc.Cache == nil {
		return
	}
	if err := pc.Cache.Del(c.Request.Context(), productListCacheKey).Err(); err != nil {
		pc.Logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}
