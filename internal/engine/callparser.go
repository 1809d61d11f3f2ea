package engine

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// callLexer разбивает выражение вызова на токены.
// Кавычка всегда отдельный токен: парная она или нет, решает парсер.
var callLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Quote", Pattern: `["']`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Text", Pattern: `[^(),"'\s]+`},
})

var (
	tokQuote      = callLexer.Symbols()["Quote"]
	tokIdent      = callLexer.Symbols()["Ident"]
	tokLParen     = callLexer.Symbols()["LParen"]
	tokRParen     = callLexer.Symbols()["RParen"]
	tokComma      = callLexer.Symbols()["Comma"]
	tokWhitespace = callLexer.Symbols()["Whitespace"]
)

// callExpr: разобранный вызов name(args).
type callExpr struct {
	Name string
	Args []argExpr

	// Raw: исходный текст вызова, подставляется, если функция неизвестна.
	Raw string
}

// argExpr: аргумент: вложенный вызов или литерал.
type argExpr struct {
	Call    *callExpr
	Literal string
}

// parseCall разбирает выражение вида
//
//	call := NAME '(' args ')'
//	args := expr (',' expr)*
//	expr := call | literal
//
// Литерал в кавычках может содержать запятые и скобки; кавычки снимаются.
// Непарная кавычка или кавычка внутри слова остаётся обычным текстом.
// Литерал без кавычек: текст до запятой или закрывающей скобки верхнего
// уровня (сбалансированные скобки внутри допускаются).
func parseCall(src string) (*callExpr, error) {
	lex, err := callLexer.Lex("", strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallSyntax, err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallSyntax, err)
	}

	p := &callParser{src: src, tokens: tokens}
	call, err := p.call()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.peek().EOF() {
		return nil, p.errorf("unexpected %q after call", p.peek().Value)
	}
	return call, nil
}

type callParser struct {
	src    string
	tokens []lexer.Token
	pos    int
}

func (p *callParser) peek() lexer.Token {
	return p.tokens[p.pos]
}

// peekAfterSpace возвращает следующий значимый токен, не сдвигая позицию.
func (p *callParser) peekAfterSpace() lexer.Token {
	i := p.pos
	for p.tokens[i].Type == tokWhitespace {
		i++
	}
	return p.tokens[i]
}

func (p *callParser) next() lexer.Token {
	t := p.tokens[p.pos]
	if !t.EOF() {
		p.pos++
	}
	return t
}

func (p *callParser) skipSpace() {
	for p.peek().Type == tokWhitespace {
		p.pos++
	}
}

func (p *callParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrCallSyntax, fmt.Sprintf(format, args...), p.peek().Pos.Offset)
}

// offset возвращает смещение текущего токена в исходной строке.
func (p *callParser) offset() int {
	t := p.peek()
	if t.EOF() {
		return len(p.src)
	}
	return t.Pos.Offset
}

func (p *callParser) call() (*callExpr, error) {
	p.skipSpace()
	start := p.offset()

	name := p.next()
	if name.Type != tokIdent {
		return nil, p.errorf("expected function name, got %q", name.Value)
	}
	p.skipSpace()
	if t := p.next(); t.Type != tokLParen {
		return nil, p.errorf("expected '(' after %s", name.Value)
	}

	c := &callExpr{Name: name.Value}

	if p.peekAfterSpace().Type == tokRParen {
		p.skipSpace()
		p.next()
		c.Raw = p.src[start:p.offset()]
		return c, nil
	}

	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, arg)

		p.skipSpace()
		switch t := p.next(); t.Type {
		case tokComma:
			continue
		case tokRParen:
			c.Raw = p.src[start:p.offset()]
			return c, nil
		default:
			if t.EOF() {
				return nil, p.errorf("unterminated call %s", name.Value)
			}
			return nil, p.errorf("unexpected %q in arguments of %s", t.Value, name.Value)
		}
	}
}

func (p *callParser) expr() (argExpr, error) {
	p.skipSpace()

	if p.peek().Type == tokIdent && p.isCallAhead() {
		c, err := p.call()
		if err != nil {
			return argExpr{}, err
		}
		return argExpr{Call: c}, nil
	}

	if p.peek().Type == tokQuote {
		if lit, end, ok := p.quoted(); ok {
			p.pos = end
			return argExpr{Literal: lit}, nil
		}
	}

	return p.literal()
}

// isCallAhead проверяет, что за идентификатором следует '('.
func (p *callParser) isCallAhead() bool {
	i := p.pos + 1
	for p.tokens[i].Type == tokWhitespace {
		i++
	}
	return p.tokens[i].Type == tokLParen
}

// quoted ищет закрывающую кавычку того же вида, за которой аргумент
// заканчивается. Возвращает текст между кавычками и позицию после закрывающей.
func (p *callParser) quoted() (string, int, bool) {
	open := p.tokens[p.pos]
	for i := p.pos + 1; !p.tokens[i].EOF(); i++ {
		t := p.tokens[i]
		if t.Type == tokQuote && t.Value == open.Value && p.isArgEndAfter(i+1) {
			return p.src[open.Pos.Offset+1 : t.Pos.Offset], i + 1, true
		}
	}
	return "", 0, false
}

// isArgEndAfter проверяет, что с позиции i (после пробелов) аргумент заканчивается.
func (p *callParser) isArgEndAfter(i int) bool {
	for p.tokens[i].Type == tokWhitespace {
		i++
	}
	t := p.tokens[i]
	return t.Type == tokComma || t.Type == tokRParen
}

// literal собирает текст аргумента до запятой или ')' верхнего уровня.
func (p *callParser) literal() (argExpr, error) {
	start := p.offset()
	depth := 0
	for {
		t := p.peek()
		switch {
		case t.EOF():
			return argExpr{}, p.errorf("unterminated argument")
		case t.Type == tokLParen:
			depth++
		case t.Type == tokRParen:
			if depth == 0 {
				return argExpr{Literal: strings.TrimSpace(p.src[start:p.offset()])}, nil
			}
			depth--
		case t.Type == tokComma && depth == 0:
			return argExpr{Literal: strings.TrimSpace(p.src[start:p.offset()])}, nil
		}
		p.pos++
	}
}
