package engine

import (
	"time"

	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
)

// KeyEntry: скалярный ключ шаблона.
type KeyEntry struct {
	Name        string
	Value       string
	Description string
}

// snapshot: данные, доступные функциям извлечения ключей.
type snapshot struct {
	contract  *domain.Contract
	proration *Proration
	now       time.Time
}

// keySpec описывает один перечисленный ключ.
type keySpec struct {
	name        string
	description string
	value       func(s *snapshot) string
}

// keySpecs: перечень всех ключей. Порядок определяет порядок в каталоге.
var keySpecs = []keySpec{
	// Контракт
	{"contrato_numero", "Número do contrato", func(s *snapshot) string { return s.contract.Number }},
	{"contrato_data_inicio", "Data de início (dd/mm/aaaa)", func(s *snapshot) string { return formatDate(s.contract.StartDate) }},
	{"contrato_data_fim", "Data de término (dd/mm/aaaa)", func(s *snapshot) string { return formatDate(s.contract.EndDate) }},
	{"contrato_data_assinatura", "Data de assinatura (dd/mm/aaaa)", func(s *snapshot) string { return formatDate(s.contract.SignedAt) }},
	{"contrato_fidelidade_meses", "Prazo de fidelidade em meses", func(s *snapshot) string { return formatInt(s.contract.LoyaltyMonths) }},
	{"contrato_renovacao_automatica", "Renovação automática (Sim/Não)", func(s *snapshot) string { return formatBool(s.contract.AutoRenew) }},
	{"contrato_observacoes", "Observações", func(s *snapshot) string { return s.contract.Notes }},
	{"contrato_quantidade_renovacoes", "Quantidade de renovações", func(s *snapshot) string { return formatInt(len(s.contract.Renewals)) }},
	{"contrato_ultima_renovacao", "Data da última renovação", func(s *snapshot) string {
		if r := s.contract.LastRenewal(); r != nil {
			return formatDate(&r.RenewedAt)
		}
		return ""
	}},
	{"contrato_valor_anterior", "Valor mensal antes da última renovação", func(s *snapshot) string {
		if r := s.contract.LastRenewal(); r != nil {
			return formatDecimal(r.PreviousPrice)
		}
		return ""
	}},
	{"data_atual", "Data de emissão do documento", func(s *snapshot) string { return formatDate(&s.now) }},

	// Cliente
	{"cliente_nome", "Nome ou razão social", func(s *snapshot) string { return s.contract.Customer.Name }},
	{"cliente_nome_fantasia", "Nome fantasia", func(s *snapshot) string { return s.contract.Customer.TradeName }},
	{"cliente_documento", "CPF ou CNPJ formatado", func(s *snapshot) string { return formatDocument(s.contract.Customer.Document) }},
	{"cliente_inscricao_estadual", "Inscrição estadual", func(s *snapshot) string { return s.contract.Customer.StateRegistration }},
	{"cliente_email", "E-mail", func(s *snapshot) string { return s.contract.Customer.Email }},
	{"cliente_telefone", "Telefone de contato", func(s *snapshot) string { return s.contract.Customer.Phone }},
	{"cliente_representante", "Representante legal", func(s *snapshot) string { return s.contract.Customer.Representative }},
	{"cliente_endereco", "Endereço completo", func(s *snapshot) string { return fullAddress(s.contract.Customer.Address) }},
	{"cliente_logradouro", "Logradouro", func(s *snapshot) string { return s.contract.Customer.Address.Street }},
	{"cliente_numero", "Número do endereço", func(s *snapshot) string { return s.contract.Customer.Address.Number }},
	{"cliente_complemento", "Complemento", func(s *snapshot) string { return s.contract.Customer.Address.Complement }},
	{"cliente_bairro", "Bairro", func(s *snapshot) string { return s.contract.Customer.Address.Neighborhood }},
	{"cliente_cidade", "Cidade", func(s *snapshot) string { return s.contract.Customer.Address.City }},
	{"cliente_uf", "UF", func(s *snapshot) string { return s.contract.Customer.Address.State }},
	{"cliente_cep", "CEP", func(s *snapshot) string { return s.contract.Customer.Address.ZipCode }},

	// Plano
	{"plano_nome", "Nome do plano", func(s *snapshot) string { return s.contract.Plan.Name }},
	{"plano_descricao", "Descrição do plano", func(s *snapshot) string { return s.contract.Plan.Description }},
	{"plano_valor", "Preço mensal do plano", func(s *snapshot) string { return formatDecimal(s.contract.Plan.Price) }},
	{"plano_taxa_instalacao", "Taxa de instalação", func(s *snapshot) string { return formatDecimal(s.contract.Plan.InstallationFee) }},
	{"plano_dia_vencimento", "Dia de vencimento", func(s *snapshot) string {
		if s.contract.Plan.DueDay == 0 {
			return ""
		}
		return formatInt(s.contract.Plan.DueDay)
	}},

	// Composição
	{"composicao_nome", "Nome da composição fiscal", func(s *snapshot) string {
		if c := s.contract.Plan.Composition; c != nil {
			return c.Name
		}
		return ""
	}},
	{"valor_mensal", "Valor mensal (soma da composição sem benefício)", func(s *snapshot) string {
		without, _ := s.proration.Totals()
		return formatDecimal(without)
	}},
	{"valor_beneficio", "Benefício mensal (com benefício − sem benefício)", func(s *snapshot) string {
		without, with := s.proration.Totals()
		return formatDecimal(with - without)
	}},
	{"valor_mensal_com_beneficio", "Valor mensal com benefício", func(s *snapshot) string {
		_, with := s.proration.Totals()
		return formatDecimal(with)
	}},

	// Telefonia
	{"telefonia_ddr", "Modo DDR (Sim/Não)", func(s *snapshot) string { return formatBool(s.contract.Telephony.DDR) }},
	{"telefonia_canais", "Quantidade de canais", func(s *snapshot) string { return formatInt(s.contract.Telephony.Channels) }},
	{"telefonia_quantidade_numeros", "Quantidade de números alocados", func(s *snapshot) string {
		return formatInt(len(s.contract.Telephony.Numbers))
	}},

	// Produtos
	{"produtos_quantidade", "Quantidade de produtos (sem benefícios)", func(s *snapshot) string {
		return formatInt(len(filterProducts(s.contract.Products, false)))
	}},
	{"produtos_valor_total", "Valor total dos produtos", func(s *snapshot) string {
		return formatDecimal(sumProducts(filterProducts(s.contract.Products, false)))
	}},
	{"beneficios_valor_total", "Valor total dos benefícios", func(s *snapshot) string {
		return formatDecimal(sumProducts(filterProducts(s.contract.Products, true)))
	}},
}

// Keys: реестр скалярных ключей одного снимка контракта.
type Keys struct {
	entries []KeyEntry
	index   map[string]int
}

// BuildKeys строит таблицу ключей для контракта.
// proration может быть nil: итоги тогда равны нулю.
func BuildKeys(c *domain.Contract, p *Proration, now time.Time) *Keys {
	s := &snapshot{contract: c, proration: p, now: now}

	k := &Keys{
		entries: make([]KeyEntry, 0, len(keySpecs)),
		index:   make(map[string]int, len(keySpecs)),
	}
	for _, def := range keySpecs {
		k.index[def.name] = len(k.entries)
		k.entries = append(k.entries, KeyEntry{
			Name:        def.name,
			Value:       def.value(s),
			Description: def.description,
		})
	}
	return k
}

// Get возвращает ключ по имени.
func (k *Keys) Get(name string) (KeyEntry, bool) {
	i, ok := k.index[name]
	if !ok {
		return KeyEntry{}, false
	}
	return k.entries[i], true
}

// Entries возвращает копию всех ключей в порядке перечня.
func (k *Keys) Entries() []KeyEntry {
	return append([]KeyEntry(nil), k.entries...)
}

// ResolveScalars заменяет [[ key ]] значениями зарегистрированных ключей.
// Незарегистрированные имена остаются в документе без изменений.
// Возвращает число изменённых текстовых фрагментов.
func (k *Keys) ResolveScalars(tree document.Tree) int {
	return tree.Root().Rewrite(k.resolveText)
}

func (k *Keys) resolveText(s string) string {
	return rewrite(s, func(t Token) (string, bool) {
		if t.Kind != TokenScalar {
			return "", false
		}
		e, ok := k.Get(t.Name)
		if !ok {
			return "", false
		}
		return e.Value, true
	})
}

func fullAddress(a domain.Address) string {
	street := joinNonEmpty(", ", a.Street, a.Number, a.Complement)
	city := joinNonEmpty("/", a.City, a.State)
	return joinNonEmpty(" - ", street, a.Neighborhood, city, a.ZipCode)
}

func filterProducts(products []domain.Product, benefit bool) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if p.IsBenefit == benefit {
			out = append(out, p)
		}
	}
	return out
}

func sumProducts(products []domain.Product) float64 {
	var total float64
	for _, p := range products {
		total += p.Total()
	}
	return total
}
