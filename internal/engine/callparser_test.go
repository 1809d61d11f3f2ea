package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCall(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *callExpr
	}{
		{
			name: "literals",
			src:  "soma(1, 2.5)",
			want: &callExpr{Name: "soma", Raw: "soma(1, 2.5)", Args: []argExpr{{Literal: "1"}, {Literal: "2.5"}}},
		},
		{
			name: "nested",
			src:  "soma(1, multiplica(2,3))",
			want: &callExpr{
				Name: "soma",
				Raw:  "soma(1, multiplica(2,3))",
				Args: []argExpr{
					{Literal: "1"},
					{Call: &callExpr{Name: "multiplica", Raw: "multiplica(2,3)", Args: []argExpr{{Literal: "2"}, {Literal: "3"}}}},
				},
			},
		},
		{
			name: "quoted literal keeps commas",
			src:  `compara("a, b", 'x', Sim)`,
			want: &callExpr{
				Name: "compara",
				Raw:  `compara("a, b", 'x', Sim)`,
				Args: []argExpr{{Literal: "a, b"}, {Literal: "x"}, {Literal: "Sim"}},
			},
		},
		{
			name: "free text literal",
			src:  "compara(João da Silva, joao da silva, Igual)",
			want: &callExpr{
				Name: "compara",
				Raw:  "compara(João da Silva, joao da silva, Igual)",
				Args: []argExpr{{Literal: "João da Silva"}, {Literal: "joao da silva"}, {Literal: "Igual"}},
			},
		},
		{
			name: "unpaired quotes stay in literal",
			src:  `compara(D'Ávila, 12", O'Neil)`,
			want: &callExpr{
				Name: "compara",
				Raw:  `compara(D'Ávila, 12", O'Neil)`,
				Args: []argExpr{{Literal: "D'Ávila"}, {Literal: `12"`}, {Literal: "O'Neil"}},
			},
		},
		{
			name: "quote not closing argument",
			src:  `compara('a'b', x)`,
			want: &callExpr{
				Name: "compara",
				Raw:  `compara('a'b', x)`,
				Args: []argExpr{{Literal: "a'b"}, {Literal: "x"}},
			},
		},
		{
			name: "no args",
			src:  "soma()",
			want: &callExpr{Name: "soma", Raw: "soma()"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCall(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseCall mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCall_Errors(t *testing.T) {
	for _, src := range []string{
		"soma(1, 2",
		"(1, 2)",
		"soma 1, 2",
		"soma(1) extra",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := parseCall(src)
			if !errors.Is(err, ErrCallSyntax) {
				t.Errorf("expected ErrCallSyntax, got %v", err)
			}
		})
	}
}
