package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssovee/Open-Data-API/providers"
)

type Currency struct {
	svc    *providers.CurrencyService
	logger *slog.Logger
}

func NewCurrency(svc *providers.CurrencyService, logger *slog.Logger) *Currency {
	return &Currency{svc: svc, logger: logger}
}

func (h *Currency) Register(g *gin.RouterGroup) {
	g.GET("/", h.Rate)
	g.GET("/rates", h.Rates)
}

// Rate answers ?from=USD&to=EUR.
func (h *Currency) Rate(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		badRequest(c, "from and to are required")
		return
	}
	r, err := h.svc.Rate(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Rates answers ?base=USD with every known rate; base defaults to USD.
func (h *Currency) Rates(c *gin.Context) {
	table, err := h.svc.Rates(c.Request.Context(), c.DefaultQuery("base", "USD"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type Weather struct {
	svc    *providers.WeatherService
	logger *slog.Logger
}

func NewWeather(svc *providers.WeatherService, logger *slog.Logger) *Weather {
	return &Weather{svc: svc, logger: logger}
}

func (h *Weather) Register(g *gin.RouterGroup) {
	g.GET("/", h.Current)
	g.GET("/:city", h.Current)
}

func (h *Weather) Current(c *gin.Context) {
	city := c.Param("city")
	if city == "" {
		city = c.Query("city")
	}
	if city == "" {
		badRequest(c, "city is required")
		return
	}
	w, err := h.svc.Current(c.Request.Context(), city)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
