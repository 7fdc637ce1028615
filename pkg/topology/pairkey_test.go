package topology

import (
	"errors"
	"testing"
)

func TestPairKeyParser_Parse(t *testing.T) {
	tests := []struct {
		name      string
		known     []string
		key       string
		wantA     string
		wantB     string
		wantErrIs error
	}{
		{name: "simple", key: "0-1", wantA: "0", wantB: "1"},
		{name: "unknown ids single split", key: "face7-face9", wantA: "face7", wantB: "face9"},
		{name: "delimiter inside id resolved by known set", known: []string{"a-b", "c"}, key: "a-b-c", wantA: "a-b", wantB: "c"},
		{name: "delimiter inside both ids", known: []string{"a-b", "c-d"}, key: "a-b-c-d", wantA: "a-b", wantB: "c-d"},
		{name: "leading delimiter is part of id", key: "-1-2", wantA: "-1", wantB: "2"},
		{name: "ambiguous without known ids", key: "a-b-c", wantErrIs: ErrAmbiguousPairKey},
		{name: "ambiguous with two known splits", known: []string{"a", "b-c", "a-b", "c"}, key: "a-b-c", wantErrIs: ErrAmbiguousPairKey},
		{name: "no delimiter", key: "abc", wantErrIs: ErrInvalidPairKey},
		{name: "empty half", key: "abc-", wantErrIs: ErrInvalidPairKey},
		{name: "self pair", key: "7-7", wantA: "7", wantB: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPairKeyParser("", tt.known)
			a, b, err := p.Parse(tt.key)

			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.key, err, tt.wantErrIs)
				}
				if !errors.Is(err, ErrMalformedTopology) {
					t.Errorf("Parse(%q) error should match ErrMalformedTopology", tt.key)
				}
				var mte *MalformedTopologyError
				if !errors.As(err, &mte) || mte.Key != tt.key {
					t.Errorf("Expected MalformedTopologyError naming %q, got %v", tt.key, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.key, err)
			}
			if a != tt.wantA || b != tt.wantB {
				t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", tt.key, a, b, tt.wantA, tt.wantB)
			}
		})
	}
}

func TestPairKeyParser_CustomDelimiter(t *testing.T) {
	p := NewPairKeyParser("::", nil)
	if p.Delimiter() != "::" {
		t.Fatalf("Delimiter() = %q", p.Delimiter())
	}

	a, b, err := p.Parse("face-1::face-2")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if a != "face-1" || b != "face-2" {
		t.Errorf("Parse() = (%q, %q)", a, b)
	}
}

func TestJoinPairKeyRoundTrip(t *testing.T) {
	p := NewPairKeyParser("", nil)
	a, b, err := p.Parse(JoinPairKey("12", "40", ""))
	if err != nil || a != "12" || b != "40" {
		t.Errorf("round trip = (%q, %q, %v)", a, b, err)
	}
}

func TestCurvatureCodeString(t *testing.T) {
	tests := map[CurvatureCode]string{
		Concave:          "CONCAVE",
		Convex:           "CONVEX",
		Tangential:       "TANGENTIAL",
		CurvatureCode(7): "CurvatureCode(7)",
	}
	for code, want := range tests {
		if got := code.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(code), got, want)
		}
	}
	if CurvatureCode(3).Valid() || CurvatureCode(-1).Valid() {
		t.Error("Out-of-range codes reported valid")
	}
}
