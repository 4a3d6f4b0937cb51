package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/models"
)

type ListResponse[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Resource serves conventional CRUD routes for one entity type.
type Resource[T any] struct {
	repo     *database.Repository[T]
	logger   *slog.Logger
	onCreate func(*T)
}

func NewResource[T any](repo *database.Repository[T], logger *slog.Logger) *Resource[T] {
	return &Resource[T]{repo: repo, logger: logger}
}

// OnCreate sets a hook applied to every new entity after binding.
func (h *Resource[T]) OnCreate(fn func(*T)) *Resource[T] {
	h.onCreate = fn
	return h
}

func (h *Resource[T]) Register(g *gin.RouterGroup) {
	g.GET("/", h.List)
	g.GET("/:id", h.Get)
	g.POST("/", h.Create)
	g.PUT("/:id", h.Replace)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}

func (h *Resource[T]) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		badRequest(c, "invalid page")
		return
	}
	limit, err := queryInt(c, "limit", database.DefaultLimit)
	if err != nil {
		badRequest(c, "invalid limit")
		return
	}
	page, limit = database.NormalizePage(page, limit)

	items, total, err := h.repo.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[T]{Data: items, Page: page, Limit: limit, Total: total})
}

func (h *Resource[T]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	v, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Resource[T]) Create(c *gin.Context) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, err.Error())
		return
	}
	models.ClearServerFields(&v)
	if h.onCreate != nil {
		h.onCreate(&v)
	}
	if err := h.repo.Create(c.Request.Context(), &v); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Resource[T]) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.repo.Replace(c.Request.Context(), id, &v)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Patch overlays the fields present in the body onto the stored entity.
func (h *Resource[T]) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		badRequest(c, "invalid json body")
		return
	}

	var invalid error
	updated, err := h.repo.Patch(c.Request.Context(), id, func(v *T) error {
		if err := json.Unmarshal(body, v); err != nil {
			invalid = err
			return err
		}
		if err := binding.Validator.ValidateStruct(v); err != nil {
			invalid = err
			return err
		}
		return nil
	})
	if invalid != nil {
		badRequest(c, invalid.Error())
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Resource[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
