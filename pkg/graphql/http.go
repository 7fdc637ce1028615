package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema     graphql.Schema
	maxDepth   int
	corsOrigin string
}

// HandlerOption configures a GraphQLHandler.
type HandlerOption func(*GraphQLHandler)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) HandlerOption {
	return func(h *GraphQLHandler) { h.maxDepth = depth }
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value. Empty disables CORS headers.
func WithCORSOrigin(origin string) HandlerOption {
	return func(h *GraphQLHandler) { h.corsOrigin = origin }
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema, opts ...HandlerOption) *GraphQLHandler {
	h := &GraphQLHandler{
		schema:     schema,
		maxDepth:   DefaultMaxDepth,
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles HTTP requests for GraphQL queries
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.corsOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", h.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "Missing query", http.StatusBadRequest)
		return
	}

	result := ExecuteWithDepthLimit(r.Context(), h.schema, req.Query, h.maxDepth, req.Variables)

	response := GraphQLResponse{
		Data: result.Data,
	}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{
				Message: err.Message,
			}
		}
	}

	// GraphQL errors travel in the body; the transport still succeeded
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
