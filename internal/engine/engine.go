package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
)

// Engine выполняет слияние шаблона с одним снимком контракта.
//
// Экземпляр рассчитан на один рендер свежего документа. Повторный проход
// по уже обработанному документу ничего не меняет: токены уничтожены.
type Engine struct {
	contract  *domain.Contract
	proration *Proration
	keys      *Keys
	lists     *Lists
	funcs     *Funcs
	logger    *slog.Logger
	now       func() time.Time
}

// Option настраивает Engine.
type Option func(*Engine)

// WithFuncs задаёт реестр функций вместо встроенного.
func WithFuncs(f *Funcs) Option {
	return func(e *Engine) {
		e.funcs = f
	}
}

// WithLogger задаёт логгер.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock задаёт источник текущего времени для [[ data_atual ]].
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New создаёт движок для контракта.
func New(c *domain.Contract, opts ...Option) *Engine {
	e := &Engine{
		contract: c,
		funcs:    DefaultFuncs(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.proration = Prorate(c.Plan.Composition, c.Plan.Price, c.Plan.Benefit)
	if e.proration != nil && e.proration.DroppedRemainder > 0 {
		e.logger.Warn("composition remainder dropped: no autocomplete items",
			"contract_id", c.ID.String(),
			"remainder", e.proration.DroppedRemainder,
		)
	}
	e.keys = BuildKeys(c, e.proration, e.now())
	e.lists = BuildLists(c, e.proration)

	return e
}

// Proration возвращает распределение цены (nil без композиции).
func (e *Engine) Proration() *Proration {
	return e.proration
}

// Keys возвращает реестр скаляров.
func (e *Engine) Keys() *Keys {
	return e.keys
}

// Lists возвращает реестр списков.
func (e *Engine) Lists() *Lists {
	return e.lists
}

// Funcs возвращает реестр функций.
func (e *Engine) Funcs() *Funcs {
	return e.funcs
}

// ResolveScalars заменяет [[ key ]].
func (e *Engine) ResolveScalars(tree document.Tree) int {
	return e.keys.ResolveScalars(tree)
}

// ResolveLists раскрывает списки.
func (e *Engine) ResolveLists(tree document.Tree) int {
	return e.lists.ResolveLists(tree)
}

// ResolveFunctions вычисляет {{ }}.
func (e *Engine) ResolveFunctions(tree document.Tree) int {
	return e.funcs.ResolveFunctions(tree)
}

// Stats: счётчики одного прохода ResolveAll.
type Stats struct {
	Scalars    int `json:"scalars"`
	Lists      int `json:"lists"`
	Functions  int `json:"functions"`
	Unresolved int `json:"unresolved"`
}

// ResolveAll выполняет проходы строго в порядке keys → lists → functions.
//
// Ключи идут первыми: значения могут попасть в аргументы функций.
// Списки идут до функций: строки списков приносят новые вызовы.
func (e *Engine) ResolveAll(tree document.Tree) Stats {
	var st Stats
	st.Scalars = e.ResolveScalars(tree)
	st.Lists = e.ResolveLists(tree)
	st.Functions = e.ResolveFunctions(tree)

	unresolved := Unresolved(tree)
	st.Unresolved = len(unresolved)
	for _, t := range unresolved {
		e.logger.Debug("unresolved token",
			"contract_id", e.contract.ID.String(),
			"kind", t.Kind.String(),
			"token", t.Raw,
		)
	}
	return st
}

// Unresolved возвращает токены, оставшиеся в документе.
func Unresolved(tree document.Tree) []Token {
	var out []Token
	tree.Root().Rewrite(func(s string) string {
		for _, t := range Tokenize(s) {
			if t.Kind != TokenText {
				out = append(out, t)
			}
		}
		return s
	})
	return out
}

// RenderHTML разбирает HTML-шаблон, выполняет слияние и возвращает
// содержимое <body>.
func RenderHTML(c *domain.Contract, tmpl string, opts ...Option) (string, Stats, error) {
	doc, err := document.ParseString(tmpl)
	if err != nil {
		return "", Stats{}, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	st := New(c, opts...).ResolveAll(doc)
	return doc.BodyHTML(), st, nil
}

// Placeholder описывает один доступный автору шаблона токен.
type Placeholder struct {
	Kind        string `json:"kind"`
	Token       string `json:"token"`
	Description string `json:"description"`
}

// Catalog возвращает перечень всех токенов микроязыка с описаниями.
// Значения не вычисляются: каталог строится по пустому контракту.
func Catalog(funcs *Funcs) []Placeholder {
	if funcs == nil {
		funcs = DefaultFuncs()
	}
	empty := &domain.Contract{}

	var out []Placeholder
	for _, def := range keySpecs {
		out = append(out, Placeholder{
			Kind:        TokenScalar.String(),
			Token:       scalarOpen + " " + def.name + " " + scalarClose,
			Description: def.description,
		})
	}
	for _, l := range BuildLists(empty, nil).Entries() {
		out = append(out, Placeholder{
			Kind:        TokenListAnchor.String(),
			Token:       listOpen + " $" + l.Name + "(elementId, titulo) " + listClose,
			Description: l.Description,
		})
		for _, f := range l.Rows[0] {
			out = append(out, Placeholder{
				Kind:        TokenListRow.String(),
				Token:       listOpen + " " + l.Name + "(" + f.Name + ") " + listClose,
				Description: f.Description,
			})
		}
	}
	for _, f := range funcs.Entries() {
		out = append(out, Placeholder{
			Kind:        TokenFuncCall.String(),
			Token:       funcOpen + " " + f.Name + "(...) " + funcClose,
			Description: f.Description,
		})
	}
	return out
}
