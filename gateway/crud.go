package gateway

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/graphql-go/graphql"

	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/models"
)

type crudConfig[T any] struct {
	singular string // "user"
	plural   string // "users"
	typeName string // "User"
	fields   fieldSet
	repo     *database.Repository[T]
	onCreate func(*T)
}

// crudSchema exposes list/get queries and create/update/delete mutations
// for one repository.
func crudSchema[T any](cfg crudConfig[T]) (graphql.Schema, error) {
	object := cfg.fields.object(cfg.typeName)
	page := graphql.NewObject(graphql.ObjectConfig{
		Name: cfg.typeName + "Page",
		Fields: graphql.Fields{
			"data":  &graphql.Field{Type: graphql.NewList(object)},
			"page":  &graphql.Field{Type: graphql.Int},
			"limit": &graphql.Field{Type: graphql.Int},
			"total": &graphql.Field{Type: graphql.Int},
		},
	})
	idArg := graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			cfg.plural: &graphql.Field{
				Type: page,
				Args: graphql.FieldConfigArgument{
					"page":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: database.DefaultLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pg, limit := database.NormalizePage(p.Args["page"].(int), p.Args["limit"].(int))
					items, total, err := cfg.repo.List(p.Context, pg, limit)
					if err != nil {
						return nil, err
					}
					data := make([]map[string]any, 0, len(items))
					for i := range items {
						m, err := toMap(&items[i])
						if err != nil {
							return nil, err
						}
						data = append(data, m)
					}
					return map[string]any{"data": data, "page": pg, "limit": limit, "total": total}, nil
				},
			},
			cfg.singular: &graphql.Field{
				Type: object,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v, err := cfg.repo.Get(p.Context, uint(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return toMap(v)
				},
			},
		},
	})

	title := cfg.typeName
	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"create" + title: &graphql.Field{
				Type: object,
				Args: cfg.fields.args(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var v T
					if err := overlay(&v, p.Args); err != nil {
						return nil, fmt.Errorf("invalid input: %w", err)
					}
					models.ClearServerFields(&v)
					if cfg.onCreate != nil {
						cfg.onCreate(&v)
					}
					if err := binding.Validator.ValidateStruct(&v); err != nil {
						return nil, fmt.Errorf("invalid input: %w", err)
					}
					if err := cfg.repo.Create(p.Context, &v); err != nil {
						return nil, err
					}
					return toMap(&v)
				},
			},
			"update" + title: &graphql.Field{
				Type: object,
				Args: cfg.fields.args(idArg),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := uint(p.Args["id"].(int))
					changes := make(map[string]any, len(p.Args))
					for k, v := range p.Args {
						if k != "id" {
							changes[k] = v
						}
					}
					v, err := cfg.repo.Patch(p.Context, id, func(v *T) error {
						if err := overlay(v, changes); err != nil {
							return fmt.Errorf("invalid input: %w", err)
						}
						if err := binding.Validator.ValidateStruct(v); err != nil {
							return fmt.Errorf("invalid input: %w", err)
						}
						return nil
					})
					if err != nil {
						return nil, err
					}
					return toMap(v)
				},
			},
			"delete" + title: &graphql.Field{
				Type: graphql.Int,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					if err := cfg.repo.Delete(p.Context, uint(id)); err != nil {
						return nil, err
					}
					return id, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
