package engine

import (
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []TokenKind
	}{
		{"plain text", "Contrato de prestação", []TokenKind{TokenText}},
		{"scalar", "Nome: [[ cliente_nome ]].", []TokenKind{TokenText, TokenScalar, TokenText}},
		{"func", "{{ soma(1, 2) }}", []TokenKind{TokenFuncCall}},
		{"anchor", "<< $produtos(linha, Produtos) >>", []TokenKind{TokenListAnchor}},
		{"row", "<< produtos(nome) >>", []TokenKind{TokenListRow}},
		{"unterminated scalar", "[[ cliente_nome", []TokenKind{TokenText}},
		{"invalid name", "[[ cliente nome ]]", []TokenKind{TokenText}},
		{"empty list args", "<< produtos() >>", []TokenKind{TokenText}},
		{"comparison operators", "a << b and c >> d", []TokenKind{TokenText}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("expected %d tokens, got %d: %+v", len(tt.kinds), len(tokens), tokens)
			}
			var raw strings.Builder
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d: expected %s, got %s", i, tt.kinds[i], tok.Kind)
				}
				raw.WriteString(tok.Raw)
			}
			if raw.String() != tt.input {
				t.Errorf("raw concatenation mismatch: %q", raw.String())
			}
		})
	}
}

func TestTokenize_Fields(t *testing.T) {
	tokens := Tokenize("<< $telefones( linha-tel , Telefones alocados ) >><< telefones(numero) >>{{compara(a, b, c)}}")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}

	anchor := tokens[0]
	if anchor.Name != "telefones" || anchor.Arg != "linha-tel" || anchor.Title != "Telefones alocados" {
		t.Errorf("unexpected anchor: %+v", anchor)
	}

	row := tokens[1]
	if row.Name != "telefones" || row.Arg != "numero" {
		t.Errorf("unexpected row: %+v", row)
	}

	call := tokens[2]
	if call.Name != "compara" || call.Inner != "compara(a, b, c)" {
		t.Errorf("unexpected call: %+v", call)
	}
}

func TestRewrite_NestedInsideCall(t *testing.T) {
	in := "Total: {{ soma([[ plano_valor ]], 10) }} [[ desconhecido ]]"
	out := rewrite(in, func(tok Token) (string, bool) {
		if tok.Kind == TokenScalar && tok.Name == "plano_valor" {
			return "90.00", true
		}
		return "", false
	})

	want := "Total: {{ soma(90.00, 10) }} [[ desconhecido ]]"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestRewrite_NoTokensFastPath(t *testing.T) {
	in := "sem marcadores"
	called := false
	out := rewrite(in, func(Token) (string, bool) {
		called = true
		return "", false
	})
	if out != in || called {
		t.Errorf("text without delimiters must be returned untouched")
	}
}
