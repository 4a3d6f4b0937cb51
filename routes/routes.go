package routes

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"gorm.io/gorm"

	"github.com/ssovee/Open-Data-API/auth"
	"github.com/ssovee/Open-Data-API/config"
	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/gateway"
	"github.com/ssovee/Open-Data-API/handlers"
	"github.com/ssovee/Open-Data-API/logging"
	"github.com/ssovee/Open-Data-API/metrics"
	"github.com/ssovee/Open-Data-API/models"
	"github.com/ssovee/Open-Data-API/objectstore"
	"github.com/ssovee/Open-Data-API/providers"
	"github.com/ssovee/Open-Data-API/relay"
	"github.com/ssovee/Open-Data-API/socket"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Hub      *relay.Hub
	SocketIO *socketio.Server
	Metrics  *metrics.Collector
	Auth     *auth.Service
	Currency *providers.CurrencyService
	Weather  *providers.WeatherService
	Images   objectstore.Store
	Gateway  *gateway.Gateway
	Now      func() time.Time
}

func corsConfig(allowed string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	allowed = strings.TrimSpace(allowed)
	if allowed == "" || allowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{}
		for _, origin := range strings.Split(allowed, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, origin)
			}
		}
	}
	return corsCfg
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	cfg := d.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.HTTP.Middleware())
	}
	r.Use(cors.New(corsConfig(cfg.Socket.CORSAllowed)))

	if d.SocketIO != nil {
		r.GET("/socket.io/*any", gin.WrapH(d.SocketIO))
		r.POST("/socket.io/*any", gin.WrapH(d.SocketIO))
	}
	r.GET("/ws/share", gin.WrapF(socket.ServeWS(d.Hub, d.Logger, cfg.Socket.SendQueue)))

	api := r.Group("/rest-api/v1")
	handlers.NewResource(database.NewRepository[models.User](d.DB), d.Logger).Register(api.Group("/users"))
	handlers.NewResource(database.NewRepository[models.Movie](d.DB), d.Logger).Register(api.Group("/movies"))
	handlers.NewResource(database.NewRepository[models.Job](d.DB), d.Logger).Register(api.Group("/jobs"))
	handlers.NewResource(database.NewRepository[models.Product](d.DB), d.Logger).Register(api.Group("/products"))
	handlers.NewNotes(database.NewNoteRepository(d.DB, d.Now), cfg.Notes.TTL, d.Now, d.Logger).Register(api.Group("/notes"))
	handlers.NewImages(d.Images, cfg.Images.MaxUploadBytes, d.Logger).Register(api.Group("/images"))
	handlers.NewCurrency(d.Currency, d.Logger).Register(api.Group("/currency"))
	handlers.NewWeather(d.Weather, d.Logger).Register(api.Group("/weather"))
	handlers.NewAuth(d.Auth, d.Logger).Register(api.Group("/auth"))
	api.GET("/share/rooms", handlers.ShareStats(d.Hub))

	if d.Gateway != nil {
		d.Gateway.Register(r.Group("/graphql/v1"))
	}

	docs := cfg.Static.DocsDir
	r.Static("/static", filepath.Join(docs, "public"))
	r.Static("/images/products", cfg.Static.ProductImagesDir)
	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(docs, "index.html"))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})

	return r
}
