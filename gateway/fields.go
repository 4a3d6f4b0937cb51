// Package gateway builds the GraphQL schemas mirroring the REST resources,
// one schema per resource, and mounts them with GraphiQL enabled.
package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/graphql-go/graphql"
)

type field struct {
	name string
	typ  *graphql.Scalar
}

// fieldSet describes an entity: writable fields become mutation arguments,
// read-only ones only appear on the object.
type fieldSet struct {
	writable []field
	readonly []field
}

func (fs fieldSet) object(name string) *graphql.Object {
	fields := graphql.Fields{"id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)}}
	for _, f := range append(append([]field{}, fs.writable...), fs.readonly...) {
		fields[f.name] = &graphql.Field{Type: f.typ}
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

func (fs fieldSet) args(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for _, f := range fs.writable {
		args[f.name] = &graphql.ArgumentConfig{Type: f.typ}
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func str(name string) field   { return field{name, graphql.String} }
func num(name string) field   { return field{name, graphql.Int} }
func float(name string) field { return field{name, graphql.Float} }

var (
	timestamps = []field{str("created_at"), str("updated_at")}

	userFields = fieldSet{
		writable: []field{str("first_name"), str("last_name"), str("email"), str("phone"), num("age"), str("gender")},
		readonly: timestamps,
	}
	movieFields = fieldSet{
		writable: []field{str("title"), num("year"), str("genre"), str("director"), float("rating"), num("runtime"), str("plot"), str("poster")},
		readonly: timestamps,
	}
	jobFields = fieldSet{
		writable: []field{str("title"), str("company"), str("location"), str("type"), num("salary"), str("description")},
		readonly: []field{str("posted_at"), str("updated_at")},
	}
	productFields = fieldSet{
		writable: []field{str("title"), str("description"), float("price"), str("category"), str("brand"), num("stock"), float("rating"), str("image")},
		readonly: timestamps,
	}
)

// toMap converts v to its JSON object form so field names and time
// formatting match the REST responses.
func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("entity is not an object: %w", err)
	}
	return m, nil
}

// overlay decodes the given arguments onto dst using their JSON names.
func overlay(dst any, args map[string]any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
