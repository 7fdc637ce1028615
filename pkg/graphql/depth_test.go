package graphql

import (
	"testing"
)

func TestValidateQueryDepth(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		max     int
		wantErr bool
	}{
		{"scalar only", `{ pocketCount }`, 1, false},
		{"one level", `{ pocket(index: 0) { index } }`, 2, false},
		{"two levels over", `{ entity(id: "a") { pocket { index } } }`, 2, true},
		{"introspection ignored", `{ __schema { types { name } } pocketCount }`, 1, false},
		{"inline fragment", `{ entity(id: "a") { ... on EntityPocket { pocket { index } } } }`, 3, false},
		{"named fragment", `query { entity(id: "a") { ...P } } fragment P on EntityPocket { pocket { entities } }`, 2, true},
		{"fragment cycle", `query { entity(id: "a") { ...A } } fragment A on EntityPocket { ...A }`, 5, false},
		{"parse error", `{ pocket(`, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQueryDepth(tt.query, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQueryDepth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyLimit(t *testing.T) {
	cfg := &LimitConfig{DefaultLimit: 10, MaxLimit: 50}
	cases := map[int]int{-1: 10, 0: 0, 20: 20, 500: 50}
	for in, want := range cases {
		if got := applyLimit(in, cfg); got != want {
			t.Errorf("applyLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
