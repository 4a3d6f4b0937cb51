package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"gorm.io/gorm"

	"github.com/ssovee/Open-Data-API/auth"
	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/models"
	"github.com/ssovee/Open-Data-API/providers"
)

type Deps struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Currency *providers.CurrencyService
	Weather  *providers.WeatherService
}

// Gateway holds one schema per endpoint name, e.g. "users" is served at
// <prefix>/users.
type Gateway struct {
	schemas map[string]*graphql.Schema
}

func New(deps Deps) (*Gateway, error) {
	g := &Gateway{schemas: make(map[string]*graphql.Schema)}

	builders := map[string]func() (graphql.Schema, error){
		"users": func() (graphql.Schema, error) {
			return crudSchema(crudConfig[models.User]{
				singular: "user", plural: "users", typeName: "User",
				fields: userFields, repo: database.NewRepository[models.User](deps.DB),
			})
		},
		"movies": func() (graphql.Schema, error) {
			return crudSchema(crudConfig[models.Movie]{
				singular: "movie", plural: "movies", typeName: "Movie",
				fields: movieFields, repo: database.NewRepository[models.Movie](deps.DB),
			})
		},
		"jobs": func() (graphql.Schema, error) {
			return crudSchema(crudConfig[models.Job]{
				singular: "job", plural: "jobs", typeName: "Job",
				fields: jobFields, repo: database.NewRepository[models.Job](deps.DB),
			})
		},
		"products": func() (graphql.Schema, error) {
			return crudSchema(crudConfig[models.Product]{
				singular: "product", plural: "products", typeName: "Product",
				fields: productFields, repo: database.NewRepository[models.Product](deps.DB),
			})
		},
		"currency": func() (graphql.Schema, error) { return currencySchema(deps.Currency) },
		"weather":  func() (graphql.Schema, error) { return weatherSchema(deps.Weather) },
		"auth":     func() (graphql.Schema, error) { return authSchema(deps.Auth) },
	}

	for name, build := range builders {
		s, err := build()
		if err != nil {
			return nil, fmt.Errorf("build %s schema: %w", name, err)
		}
		g.schemas[name] = &s
	}
	return g, nil
}

// Schema returns the schema mounted under name, or nil.
func (g *Gateway) Schema(name string) *graphql.Schema {
	return g.schemas[name]
}

// Handler serves GraphQL requests for the named schema with GraphiQL
// enabled for browser GETs.
func (g *Gateway) Handler(name string) http.Handler {
	return handler.New(&handler.Config{
		Schema:   g.schemas[name],
		Pretty:   true,
		GraphiQL: true,
	})
}

// Register mounts every schema under the group, answering GET and POST.
func (g *Gateway) Register(r *gin.RouterGroup) {
	for name := range g.schemas {
		h := gin.WrapH(g.Handler(name))
		r.GET("/"+name, h)
		r.POST("/"+name, h)
	}
}
