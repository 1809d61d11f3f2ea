package engine

import (
	"strings"
	"testing"

	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
)

func TestBuildKeys(t *testing.T) {
	c := sampleContract()
	keys := BuildKeys(c, Prorate(c.Plan.Composition, c.Plan.Price, c.Plan.Benefit), fixedNow)

	tests := []struct {
		key  string
		want string
	}{
		{"contrato_numero", "CT-2026-0042"},
		{"contrato_data_inicio", "05/01/2026"},
		{"contrato_data_fim", ""},
		{"contrato_renovacao_automatica", "Sim"},
		{"cliente_documento", "12.345.678/0001-95"},
		{"cliente_endereco", "Rua das Flores, 100 - Centro - Curitiba/PR - 80000-000"},
		{"plano_valor", "100.00"},
		{"plano_dia_vencimento", "10"},
		{"valor_mensal", "100.00"},
		{"valor_mensal_com_beneficio", "120.00"},
		{"valor_beneficio", "20.00"},
		{"telefonia_ddr", "Sim"},
		{"telefonia_quantidade_numeros", "4"},
		{"produtos_quantidade", "1"},
		{"produtos_valor_total", "30.00"},
		{"beneficios_valor_total", "30.00"},
		{"data_atual", "15/03/2026"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e, ok := keys.Get(tt.key)
			if !ok {
				t.Fatalf("key %s not registered", tt.key)
			}
			if e.Value != tt.want {
				t.Errorf("expected %q, got %q", tt.want, e.Value)
			}
			if e.Description == "" {
				t.Error("description should not be empty")
			}
		})
	}
}

func TestBuildKeys_NoComposition(t *testing.T) {
	c := &domain.Contract{Plan: domain.Plan{Price: 80}}
	keys := BuildKeys(c, nil, fixedNow)

	for _, name := range []string{"valor_mensal", "valor_mensal_com_beneficio", "valor_beneficio"} {
		e, _ := keys.Get(name)
		if e.Value != "0.00" {
			t.Errorf("%s: expected 0.00 without composition, got %q", name, e.Value)
		}
	}
}

func TestResolveScalars(t *testing.T) {
	c := sampleContract()
	keys := BuildKeys(c, nil, fixedNow)

	doc, err := document.ParseString(`<p title="[[ contrato_numero ]]">Contrato [[contrato_numero]] de [[ cliente_nome ]]: [[ chave_inexistente ]]</p>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if n := keys.ResolveScalars(doc); n != 2 {
		t.Errorf("expected 2 rewritten fragments, got %d", n)
	}

	want := "Contrato CT-2026-0042 de Padaria Pão Quente Ltda: [[ chave_inexistente ]]"
	if got := doc.Root().Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if out := doc.BodyHTML(); !strings.Contains(out, `title="CT-2026-0042"`) {
		t.Errorf("attribute should be resolved: %s", out)
	}
}
