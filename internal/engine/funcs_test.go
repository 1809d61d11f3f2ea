package engine

import (
	"testing"

	"github.com/shaiso/Contracta/internal/document"
)

func TestBuiltinFuncs(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
		args []string
		want string
	}{
		{"soma", funcSum, []string{"1", "2", "3.5"}, "6.50"},
		{"soma empty", funcSum, nil, "0.00"},
		{"subtrai", funcSubtract, []string{"10", "2", "3"}, "5.00"},
		{"multiplica", funcMultiply, []string{"2", "3"}, "6.00"},
		{"divide", funcDivide, []string{"6", "2"}, "3.00"},
		{"divide by zero", funcDivide, []string{"1", "0"}, "Infinity"},
		{"non numeric", funcSum, []string{"abc", "1"}, "NaN"},
		{"numeric prefix", funcSum, []string{"12px", "1"}, "13.00"},
		{"inteiro", funcInteger, []string{"2.51"}, "2"},
		{"inteiro many", funcInteger, []string{"2.51", "-3.9", "7"}, "2 -3 7"},
		{"compara equal", funcCompare, []string{"João", "joao", "X", "Y"}, "X"},
		{"compara not equal", funcCompare, []string{"a", "b", "X", "Y"}, "Y"},
		{"compara missing left", funcCompare, []string{"", "b", "X", "Y"}, "NaN"},
		{"compara missing onEqual", funcCompare, []string{"a", "a", ""}, "NaN"},
		{"compara default onNotEqual", funcCompare, []string{"a", "b", "X"}, ""},
		{"compara cedilla", funcCompare, []string{"AÇÃO", "acao", "sim", "nao"}, "sim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.args); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveFunctions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"nested", "{{soma(1, multiplica(2,3))}}", "7.00"},
		{"divide", "{{ divide(6,2) }}", "3.00"},
		{"inteiro", "{{inteiro(2.51)}}", "2"},
		{"deep nesting", "{{ soma(1, subtrai(10, multiplica(2, 2))) }}", "7.00"},
		{"unknown top level", "{{ desconto(10) }}", "{{ desconto(10) }}"},
		{"unknown nested", "{{ compara(x(1), x(1), ok) }}", "ok"},
		{"syntax error", "{{ soma(1, (2) }}", "{{ soma(1, (2) }}"},
		{"surrounding text", "Total: {{soma(1,1)}} reais", "Total: 2.00 reais"},
		{"apostrophe in name", "{{ compara(Sant'Ana, santana, IGUAL, DIFERENTE) }}", "DIFERENTE"},
		{"apostrophe equal", "{{ compara(D'Ávila, d'avila, IGUAL, DIFERENTE) }}", "IGUAL"},
		{"lone double quote", `{{ compara(12", x, IGUAL, DIFERENTE) }}`, "DIFERENTE"},
		{"two apostrophes", "{{ compara(D'Ávila, O'Neil, IGUAL, DIFERENTE) }}", "DIFERENTE"},
		{"quoted with comma", `{{ compara("a, b", "A, B", IGUAL, DIFERENTE) }}`, "IGUAL"},
	}

	funcs := DefaultFuncs()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := document.ParseString("<p>" + tt.input + "</p>")
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			funcs.ResolveFunctions(doc)
			if got := doc.Root().Text(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFuncs_Register(t *testing.T) {
	funcs := NewFuncs()
	funcs.Register("dobro", "dobra o valor", func(args []string) string {
		return formatDecimal(parseNumber(args[0]) * 2)
	})

	doc, _ := document.ParseString("<p>{{ dobro(21) }} {{ soma(1) }}</p>")
	funcs.ResolveFunctions(doc)

	if got := doc.Root().Text(); got != "42.00 {{ soma(1) }}" {
		t.Errorf("unexpected result %q", got)
	}
	if len(funcs.Entries()) != 1 {
		t.Errorf("expected one registered func, got %d", len(funcs.Entries()))
	}
}
