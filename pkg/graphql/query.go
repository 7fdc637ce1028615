package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// ExecuteQuery executes a GraphQL query against a schema
func ExecuteQuery(ctx context.Context, query string, schema graphql.Schema) *graphql.Result {
	return ExecuteQueryWithVariables(ctx, query, schema, nil)
}

// ExecuteQueryWithVariables executes a GraphQL query with variables
func ExecuteQueryWithVariables(ctx context.Context, query string, schema graphql.Schema, variables map[string]any) *graphql.Result {
	params := graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	}
	return graphql.Do(params)
}

// ExecuteWithDepthLimit rejects queries nested deeper than maxDepth before executing them.
func ExecuteWithDepthLimit(ctx context.Context, schema graphql.Schema, query string, maxDepth int, variables map[string]any) *graphql.Result {
	if err := ValidateQueryDepth(query, maxDepth); err != nil {
		return &graphql.Result{
			Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)},
		}
	}
	return ExecuteQueryWithVariables(ctx, query, schema, variables)
}
