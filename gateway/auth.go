package gateway

import (
	"github.com/graphql-go/graphql"

	"github.com/ssovee/Open-Data-API/auth"
)

var (
	accountType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Account",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":       &graphql.Field{Type: graphql.String},
			"email":      &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.String},
		},
	})

	loginType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Login",
		Fields: graphql.Fields{
			"token":      &graphql.Field{Type: graphql.String},
			"expires_at": &graphql.Field{Type: graphql.String},
			"account":    &graphql.Field{Type: accountType},
		},
	})
)

func optString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func authSchema(svc *auth.Service) (graphql.Schema, error) {
	required := func(t graphql.Input) *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: accountType,
				Args: graphql.FieldConfigArgument{"token": required(graphql.String)},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					acct, err := svc.Verify(p.Context, p.Args["token"].(string))
					if err != nil {
						return nil, err
					}
					return toMap(acct)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signup": &graphql.Field{
				Type: accountType,
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"email":    required(graphql.String),
					"password": required(graphql.String),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					acct, err := svc.Signup(p.Context, auth.SignupRequest{
						Name:     optString(p.Args, "name"),
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
					if err != nil {
						return nil, err
					}
					return toMap(acct)
				},
			},
			"login": &graphql.Field{
				Type: loginType,
				Args: graphql.FieldConfigArgument{
					"email":    required(graphql.String),
					"password": required(graphql.String),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := svc.Login(p.Context, auth.LoginRequest{
						Email:    p.Args["email"].(string),
						Password: p.Args["password"].(string),
					})
					if err != nil {
						return nil, err
					}
					return toMap(res)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
