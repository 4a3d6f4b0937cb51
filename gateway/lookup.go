package gateway

import (
	"github.com/graphql-go/graphql"

	"github.com/ssovee/Open-Data-API/providers"
)

var (
	rateType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Rate",
		Fields: graphql.Fields{
			"base":       &graphql.Field{Type: graphql.String},
			"target":     &graphql.Field{Type: graphql.String},
			"rate":       &graphql.Field{Type: graphql.Float},
			"fetched_at": &graphql.Field{Type: graphql.String},
		},
	})

	codeRateType = graphql.NewObject(graphql.ObjectConfig{
		Name: "CodeRate",
		Fields: graphql.Fields{
			"code": &graphql.Field{Type: graphql.String},
			"rate": &graphql.Field{Type: graphql.Float},
		},
	})

	rateTableType = graphql.NewObject(graphql.ObjectConfig{
		Name: "RateTable",
		Fields: graphql.Fields{
			"base":       &graphql.Field{Type: graphql.String},
			"fetched_at": &graphql.Field{Type: graphql.String},
			"rates":      &graphql.Field{Type: graphql.NewList(codeRateType)},
		},
	})

	weatherType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Weather",
		Fields: graphql.Fields{
			"city":          &graphql.Field{Type: graphql.String},
			"temperature_c": &graphql.Field{Type: graphql.Float},
			"humidity":      &graphql.Field{Type: graphql.Int},
			"condition":     &graphql.Field{Type: graphql.String},
			"wind_kph":      &graphql.Field{Type: graphql.Float},
			"fetched_at":    &graphql.Field{Type: graphql.String},
		},
	})
)

func currencySchema(svc *providers.CurrencyService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"rate": &graphql.Field{
				Type: rateType,
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, err := svc.Rate(p.Context, p.Args["from"].(string), p.Args["to"].(string))
					if err != nil {
						return nil, err
					}
					return toMap(r)
				},
			},
			"rates": &graphql.Field{
				Type: rateTableType,
				Args: graphql.FieldConfigArgument{
					"base": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "USD"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					t, err := svc.Rates(p.Context, p.Args["base"].(string))
					if err != nil {
						return nil, err
					}
					rates := make([]map[string]any, 0, len(t.Rates))
					for _, code := range t.Codes() {
						rates = append(rates, map[string]any{"code": code, "rate": t.Rates[code]})
					}
					m, err := toMap(t)
					if err != nil {
						return nil, err
					}
					m["rates"] = rates
					return m, nil
				},
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func weatherSchema(svc *providers.WeatherService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"weather": &graphql.Field{
				Type: weatherType,
				Args: graphql.FieldConfigArgument{
					"city": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					w, err := svc.Current(p.Context, p.Args["city"].(string))
					if err != nil {
						return nil, err
					}
					return toMap(w)
				},
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}
