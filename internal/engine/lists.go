package engine

import (
	"sort"
	"strconv"

	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
)

// ListField: значение одного поля строки списка.
type ListField struct {
	Name        string
	Value       string
	Description string
}

// ListEntry: перечисленный список строк.
//
// Пустой список содержит одну строку-заглушку с пустыми значениями,
// чтобы каталог полей был виден и без данных.
type ListEntry struct {
	Name        string
	Description string
	Rows        [][]ListField
}

// HasData сообщает, есть ли в списке хотя бы одна строка с данными.
// Проверяется первая строка: достаточно одного непустого поля.
func (l ListEntry) HasData() bool {
	if len(l.Rows) == 0 {
		return false
	}
	for _, f := range l.Rows[0] {
		if f.Value != "" {
			return true
		}
	}
	return false
}

// field возвращает значение поля строки.
func field(row []ListField, name string) (string, bool) {
	for _, f := range row {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// listField описывает поле перечисленного списка.
type listField[T any] struct {
	name        string
	description string
	value       func(T) string
}

func buildRows[T any](items []T, fields []listField[T]) [][]ListField {
	if len(items) == 0 {
		row := make([]ListField, len(fields))
		for i, f := range fields {
			row[i] = ListField{Name: f.name, Description: f.description}
		}
		return [][]ListField{row}
	}

	rows := make([][]ListField, 0, len(items))
	for _, it := range items {
		row := make([]ListField, len(fields))
		for i, f := range fields {
			row[i] = ListField{Name: f.name, Value: f.value(it), Description: f.description}
		}
		rows = append(rows, row)
	}
	return rows
}

var productFields = []listField[domain.Product]{
	{"nome", "Nome do produto", func(p domain.Product) string { return p.Name }},
	{"descricao", "Descrição", func(p domain.Product) string { return p.Description }},
	{"quantidade", "Quantidade", func(p domain.Product) string { return formatInt(p.Quantity) }},
	{"valor_unitario", "Valor unitário", func(p domain.Product) string { return formatDecimal(p.UnitPrice) }},
	{"valor_total", "Quantidade × valor unitário", func(p domain.Product) string { return formatDecimal(p.Total()) }},
}

var phoneFields = []listField[domain.PhoneNumber]{
	{"numero", "Número", func(n domain.PhoneNumber) string { return n.Number }},
	{"tipo", "Portabilidade ou número novo", func(n domain.PhoneNumber) string {
		if n.Portability {
			return "Portabilidade"
		}
		return "Novo"
	}},
	{"portabilidade", "Portabilidade (Sim/Não)", func(n domain.PhoneNumber) string { return formatBool(n.Portability) }},
}

var compositionFields = []listField[ParsedCompositionItem]{
	{"nome", "Nome do item", func(i ParsedCompositionItem) string { return i.Name }},
	{"sigla", "Sigla", func(i ParsedCompositionItem) string { return i.ShortName }},
	{"valor_sem_beneficio", "Valor sem benefício", func(i ParsedCompositionItem) string {
		return formatDecimal(i.ValueWithoutBenefit)
	}},
	{"valor_com_beneficio", "Valor com benefício", func(i ParsedCompositionItem) string {
		return formatDecimal(i.ValueWithBenefit)
	}},
	{"valor_beneficio", "Diferença entre os valores", func(i ParsedCompositionItem) string {
		return formatDecimal(i.ValueWithBenefit - i.ValueWithoutBenefit)
	}},
}

// Lists: реестр списков одного снимка контракта.
type Lists struct {
	entries map[string]ListEntry
	order   []string
}

// BuildLists строит списки produtos, beneficios, telefones и composicao.
func BuildLists(c *domain.Contract, p *Proration) *Lists {
	numbers := c.Telephony.Numbers
	if c.Telephony.DDR {
		numbers = ReduceDDR(numbers)
	}
	var items []ParsedCompositionItem
	if p != nil {
		items = p.Items
	}

	l := &Lists{entries: make(map[string]ListEntry)}
	l.add(ListEntry{
		Name:        "produtos",
		Description: "Produtos contratados",
		Rows:        buildRows(filterProducts(c.Products, false), productFields),
	})
	l.add(ListEntry{
		Name:        "beneficios",
		Description: "Produtos concedidos como benefício",
		Rows:        buildRows(filterProducts(c.Products, true), productFields),
	})
	l.add(ListEntry{
		Name:        "telefones",
		Description: "Números de telefone (reduzidos em modo DDR)",
		Rows:        buildRows(numbers, phoneFields),
	})
	l.add(ListEntry{
		Name:        "composicao",
		Description: "Composição fiscal do valor mensal",
		Rows:        buildRows(items, compositionFields),
	})
	return l
}

func (l *Lists) add(e ListEntry) {
	l.entries[e.Name] = e
	l.order = append(l.order, e.Name)
}

// Get возвращает список по имени.
func (l *Lists) Get(name string) (ListEntry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Entries возвращает списки в порядке регистрации.
func (l *Lists) Entries() []ListEntry {
	out := make([]ListEntry, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.entries[name])
	}
	return out
}

// ExpandList размножает элемент anchorID по строкам списка listName.
//
// Каждая копия вставляется перед якорем; исходный якорь удаляется всегда,
// поэтому пустой список оставляет на месте блока пустоту.
// Возвращает false, если список неизвестен или якоря нет.
func (l *Lists) ExpandList(tree document.Tree, listName, anchorID string) bool {
	entry, ok := l.Get(listName)
	if !ok {
		return false
	}
	anchor, ok := tree.ElementByID(anchorID)
	if !ok {
		return false
	}

	if entry.HasData() {
		for _, row := range entry.Rows {
			clone := anchor.Clone()
			clone.Rewrite(func(s string) string {
				return rewrite(s, func(t Token) (string, bool) {
					if t.Kind != TokenListRow || t.Name != listName {
						return "", false
					}
					return field(row, t.Arg)
				})
			})
			anchor.InsertBefore(clone)
		}
	}
	anchor.Remove()
	return true
}

// ResolveLists находит якоря << $list(elementId[, title]) >>, раскрывает
// каждый список и заменяет токен якоря его заголовком.
// Якоря с неизвестным списком или отсутствующим элементом не трогаются.
// Возвращает число раскрытых якорей.
func (l *Lists) ResolveLists(tree document.Tree) int {
	root := tree.Root()

	var anchors []Token
	seen := make(map[string]bool)
	root.Rewrite(func(s string) string {
		for _, t := range Tokenize(s) {
			if t.Kind == TokenListAnchor && !seen[t.Raw] {
				seen[t.Raw] = true
				anchors = append(anchors, t)
			}
		}
		return s
	})

	resolved := make(map[string]string)
	for _, a := range anchors {
		if l.ExpandList(tree, a.Name, a.Arg) {
			resolved[a.Raw] = a.Title
		}
	}
	if len(resolved) == 0 {
		return 0
	}

	root.Rewrite(func(s string) string {
		return rewrite(s, func(t Token) (string, bool) {
			if t.Kind != TokenListAnchor {
				return "", false
			}
			title, ok := resolved[t.Raw]
			return title, ok
		})
	})
	return len(resolved)
}

// ReduceDDR сокращает список номеров для режима DDR.
//
// Номера без портабельности и с портабельностью сортируются по числовому
// суффиксу отдельно. В категории из двух и более номеров остаются только
// минимальный и максимальный; меньшая категория остаётся как есть.
// Категория, достигшая двух номеров, идёт первой. Если обе достигли или
// обе нет, сначала номера без портабельности.
func ReduceDDR(numbers []domain.PhoneNumber) []domain.PhoneNumber {
	var plain, ported []domain.PhoneNumber
	for _, n := range numbers {
		if n.Portability {
			ported = append(ported, n)
		} else {
			plain = append(plain, n)
		}
	}
	first, second := plain, ported
	if len(plain) < 2 && len(ported) >= 2 {
		first, second = ported, plain
	}
	out := make([]domain.PhoneNumber, 0, 4)
	out = append(out, boundaries(first)...)
	out = append(out, boundaries(second)...)
	return out
}

func boundaries(numbers []domain.PhoneNumber) []domain.PhoneNumber {
	sorted := append([]domain.PhoneNumber(nil), numbers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return numberSuffix(sorted[i].Number) < numberSuffix(sorted[j].Number)
	})
	if len(sorted) < 2 {
		return sorted
	}
	return []domain.PhoneNumber{sorted[0], sorted[len(sorted)-1]}
}

// numberSuffix возвращает числовое значение последних четырёх цифр номера.
func numberSuffix(number string) int {
	digits := onlyDigits(number)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
