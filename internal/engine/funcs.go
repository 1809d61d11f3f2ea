package engine

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/shaiso/Contracta/internal/document"
)

// Func: чистая функция шаблона над строковыми аргументами.
type Func func(args []string) string

// FuncEntry: зарегистрированная функция шаблона.
type FuncEntry struct {
	Name        string
	Method      Func
	Description string
}

// Funcs: реестр функций шаблона.
//
// Реестр создаётся один раз и передаётся в движок явно.
// Чтение после построения безопасно из нескольких горутин.
type Funcs struct {
	entries map[string]FuncEntry
}

// NewFuncs создаёт пустой реестр.
func NewFuncs() *Funcs {
	return &Funcs{entries: make(map[string]FuncEntry)}
}

// DefaultFuncs возвращает реестр со встроенными функциями.
func DefaultFuncs() *Funcs {
	f := NewFuncs()
	f.Register("soma", "Soma dos argumentos (2 casas decimais)", funcSum)
	f.Register("subtrai", "Subtração da esquerda para a direita (2 casas decimais)", funcSubtract)
	f.Register("multiplica", "Produto dos argumentos (2 casas decimais)", funcMultiply)
	f.Register("divide", "Divisão da esquerda para a direita (2 casas decimais)", funcDivide)
	f.Register("inteiro", "Parte inteira de cada argumento, separada por espaço", funcInteger)
	f.Register("compara", "compara(a, b, igual, diferente): comparação sem acentos e maiúsculas", funcCompare)
	return f
}

// Register добавляет или заменяет функцию.
func (f *Funcs) Register(name, description string, fn Func) {
	f.entries[name] = FuncEntry{Name: name, Method: fn, Description: description}
}

// Get возвращает функцию по имени.
func (f *Funcs) Get(name string) (FuncEntry, bool) {
	e, ok := f.entries[name]
	return e, ok
}

// Entries возвращает функции, отсортированные по имени.
func (f *Funcs) Entries() []FuncEntry {
	out := make([]FuncEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveFunctions вычисляет {{ name(args) }} во всём документе.
//
// Вложенные вызовы в аргументах вычисляются первыми. Неизвестная функция
// верхнего уровня или синтаксическая ошибка оставляют токен как есть.
func (f *Funcs) ResolveFunctions(tree document.Tree) int {
	return tree.Root().Rewrite(f.resolveText)
}

func (f *Funcs) resolveText(s string) string {
	return rewrite(s, func(t Token) (string, bool) {
		if t.Kind != TokenFuncCall {
			return "", false
		}
		return f.evalToken(t)
	})
}

func (f *Funcs) evalToken(t Token) (string, bool) {
	if _, ok := f.Get(t.Name); !ok {
		return "", false
	}
	call, err := parseCall(strings.TrimSpace(t.Inner))
	if err != nil {
		return "", false
	}
	return f.eval(call), true
}

// eval вычисляет вызов в глубину. Неизвестный вложенный вызов
// подставляется исходным текстом.
func (f *Funcs) eval(c *callExpr) string {
	e, ok := f.Get(c.Name)
	if !ok {
		return c.Raw
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a.Call != nil {
			args[i] = f.eval(a.Call)
		} else {
			args[i] = a.Literal
		}
	}
	return e.Method(args)
}

func reduce(args []string, op func(acc, v float64) float64) string {
	if len(args) == 0 {
		return formatDecimal(0)
	}
	acc := parseNumber(args[0])
	for _, a := range args[1:] {
		acc = op(acc, parseNumber(a))
	}
	return formatDecimal(acc)
}

func funcSum(args []string) string {
	return reduce(args, func(acc, v float64) float64 { return acc + v })
}

func funcSubtract(args []string) string {
	return reduce(args, func(acc, v float64) float64 { return acc - v })
}

func funcMultiply(args []string) string {
	return reduce(args, func(acc, v float64) float64 { return acc * v })
}

func funcDivide(args []string) string {
	return reduce(args, func(acc, v float64) float64 { return acc / v })
}

func funcInteger(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatInteger(math.Trunc(parseNumber(a)))
	}
	return strings.Join(parts, " ")
}

func funcCompare(args []string) string {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	left, right, onEqual, onNotEqual := arg(0), arg(1), arg(2), arg(3)
	if left == "" || right == "" || onEqual == "" {
		return "NaN"
	}
	if foldText(left) == foldText(right) {
		return onEqual
	}
	return onNotEqual
}

// foldText приводит строку к нижнему регистру и снимает диакритику.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
