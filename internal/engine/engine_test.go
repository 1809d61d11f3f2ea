package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
)

const contractTemplate = `<html><body>
<h1>Contrato [[ contrato_numero ]]</h1>
<p>Cliente: [[ cliente_nome ]] ([[ cliente_documento ]])</p>
<p>Mensal: [[ valor_mensal ]] / com benefício: [[ valor_mensal_com_beneficio ]]</p>
<h3><< $produtos(linha-produto) >></h3>
<table><tbody>
<tr id="linha-produto"><td><< produtos(nome) >></td><td>{{ multiplica(<< produtos(quantidade) >>, << produtos(valor_unitario) >>) }}</td></tr>
</tbody></table>
<h3><< $telefones(linha-telefone, Números) >></h3>
<ul><li id="linha-telefone"><< telefones(numero) >></li></ul>
<p>Anual: {{ multiplica([[ valor_mensal ]], 12) }}</p>
<p>Desconhecido: [[ nao_existe ]] {{ nao_existe(1) }}</p>
</body></html>`

func TestEngine_ResolveAll(t *testing.T) {
	doc, err := document.ParseString(contractTemplate)
	require.NoError(t, err)

	e := New(sampleContract(), WithClock(clock))
	st := e.ResolveAll(doc)

	text := doc.Root().Text()
	assert.Contains(t, text, "Contrato CT-2026-0042")
	assert.Contains(t, text, "Cliente: Padaria Pão Quente Ltda (12.345.678/0001-95)")
	assert.Contains(t, text, "Mensal: 100.00 / com benefício: 120.00")
	assert.Contains(t, text, "Roteador30.00")
	assert.Contains(t, text, "Números")
	assert.Contains(t, text, "4130300010")
	assert.Contains(t, text, "4130300030")
	assert.NotContains(t, text, "4130300020")
	assert.Contains(t, text, "Anual: 1200.00")
	assert.Contains(t, text, "Desconhecido: [[ nao_existe ]] {{ nao_existe(1) }}")

	assert.Equal(t, 2, st.Lists)
	assert.Equal(t, 2, st.Unresolved)
}

func TestEngine_Idempotent(t *testing.T) {
	doc, err := document.ParseString(contractTemplate)
	require.NoError(t, err)

	e := New(sampleContract(), WithClock(clock))
	e.ResolveAll(doc)
	first := doc.String()

	st := e.ResolveAll(doc)
	assert.Equal(t, first, doc.String())
	assert.Zero(t, st.Scalars)
	assert.Zero(t, st.Lists)
	assert.Zero(t, st.Functions)
}

func TestEngine_DroppedRemainderLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := &domain.Contract{Plan: domain.Plan{
		Price: 100,
		Composition: &domain.Composition{Items: []domain.CompositionItem{
			{Name: "SVA", Percent: 50},
		}},
	}}
	e := New(c, WithLogger(logger))

	require.NotNil(t, e.Proration())
	assert.InDelta(t, 50, e.Proration().DroppedRemainder, 1e-9)
	assert.Contains(t, buf.String(), "composition remainder dropped")
}

func TestEngine_CustomFuncs(t *testing.T) {
	funcs := DefaultFuncs()
	funcs.Register("maiusculas", "texto em maiúsculas", func(args []string) string {
		return strings.ToUpper(strings.Join(args, " "))
	})

	out, _, err := RenderHTML(sampleContract(), `<p>{{ maiusculas([[ plano_nome ]]) }}</p>`, WithFuncs(funcs))
	require.NoError(t, err)
	assert.Equal(t, "<p>FIBRA 500</p>", out)
}

func TestRenderHTML_EscapesValues(t *testing.T) {
	c := sampleContract()
	c.Customer.Name = `Tom & "Jerry" <Ltda>`

	out, _, err := RenderHTML(c, `<p>[[ cliente_nome ]]</p>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>Tom &amp; &#34;Jerry&#34; &lt;Ltda&gt;</p>", out)
}

func TestRenderHTML_ApostropheInFuncArgument(t *testing.T) {
	c := sampleContract()
	c.Customer.Name = "Maria D'Ávila"

	out, stats, err := RenderHTML(c, `<p>{{ compara([[ cliente_nome ]], maria d'avila, IGUAL, DIFERENTE) }}</p>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>IGUAL</p>", out)
	assert.Zero(t, stats.Unresolved)
}

func TestCatalog(t *testing.T) {
	catalog := Catalog(nil)
	require.NotEmpty(t, catalog)

	kinds := map[string]int{}
	tokens := map[string]bool{}
	for _, p := range catalog {
		kinds[p.Kind]++
		tokens[p.Token] = true
		assert.NotEmpty(t, p.Description, p.Token)
	}

	assert.Equal(t, len(keySpecs), kinds["scalar"])
	assert.Equal(t, 4, kinds["list_anchor"])
	assert.Equal(t, 6, kinds["func"])
	assert.True(t, tokens["[[ cliente_nome ]]"])
	assert.True(t, tokens["<< produtos(valor_total) >>"])
	assert.True(t, tokens["{{ soma(...) }}"])
}
