package engine

import (
	"strings"
	"unicode"
)

// TokenKind: вид токена шаблона.
type TokenKind int

const (
	// TokenText: обычный текст между токенами.
	TokenText TokenKind = iota

	// TokenScalar: [[ key_name ]].
	TokenScalar

	// TokenFuncCall: {{ func_name(args) }}.
	TokenFuncCall

	// TokenListAnchor: << $list_name(elementId[, title]) >>.
	TokenListAnchor

	// TokenListRow: << list_name(field_name) >>.
	TokenListRow
)

// String возвращает имя вида токена.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenScalar:
		return "scalar"
	case TokenFuncCall:
		return "func"
	case TokenListAnchor:
		return "list_anchor"
	case TokenListRow:
		return "list_row"
	default:
		return "unknown"
	}
}

// Token: элемент потока токенов.
//
// Raw всегда содержит исходный текст токена байт в байт, поэтому
// конкатенация Raw всех токенов восстанавливает исходную строку.
type Token struct {
	Kind TokenKind
	Raw  string

	// Name: имя ключа, функции или списка.
	Name string

	// Inner: текст между {{ и }} без изменений (только для TokenFuncCall).
	Inner string

	// Arg: elementId для якоря, field_name для строки списка.
	Arg string

	// Title: необязательный заголовок якоря.
	Title string
}

// Разделители токенов.
const (
	scalarOpen  = "[["
	scalarClose = "]]"
	funcOpen    = "{{"
	funcClose   = "}}"
	listOpen    = "<<"
	listClose   = ">>"
)

// Tokenize разбивает строку на поток токенов за один проход.
//
// Некорректно оформленный токен (нет закрывающего разделителя, пустое
// или недопустимое имя) остаётся текстом.
func Tokenize(s string) []Token {
	var (
		tokens []Token
		text   strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Raw: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		tok, n, ok := scanToken(s[i:])
		if !ok {
			text.WriteByte(s[i])
			i++
			continue
		}
		flush()
		tokens = append(tokens, tok)
		i += n
	}
	flush()

	return tokens
}

// scanToken пытается распознать токен в начале s.
// Возвращает токен и число поглощённых байт.
func scanToken(s string) (Token, int, bool) {
	switch {
	case strings.HasPrefix(s, scalarOpen):
		return scanScalar(s)
	case strings.HasPrefix(s, funcOpen):
		return scanFuncCall(s)
	case strings.HasPrefix(s, listOpen):
		return scanList(s)
	default:
		return Token{}, 0, false
	}
}

func scanScalar(s string) (Token, int, bool) {
	end := strings.Index(s[len(scalarOpen):], scalarClose)
	if end < 0 {
		return Token{}, 0, false
	}
	n := len(scalarOpen) + end + len(scalarClose)
	name := strings.TrimSpace(s[len(scalarOpen) : len(scalarOpen)+end])
	if !isName(name) {
		return Token{}, 0, false
	}
	return Token{Kind: TokenScalar, Raw: s[:n], Name: name}, n, true
}

func scanFuncCall(s string) (Token, int, bool) {
	end := strings.Index(s[len(funcOpen):], funcClose)
	if end < 0 {
		return Token{}, 0, false
	}
	n := len(funcOpen) + end + len(funcClose)
	inner := s[len(funcOpen) : len(funcOpen)+end]
	name, rest, ok := splitCall(strings.TrimSpace(inner))
	if !ok || !strings.HasSuffix(rest, ")") {
		return Token{}, 0, false
	}
	return Token{Kind: TokenFuncCall, Raw: s[:n], Name: name, Inner: inner}, n, true
}

func scanList(s string) (Token, int, bool) {
	end := strings.Index(s[len(listOpen):], listClose)
	if end < 0 {
		return Token{}, 0, false
	}
	n := len(listOpen) + end + len(listClose)
	body := strings.TrimSpace(s[len(listOpen) : len(listOpen)+end])

	kind := TokenListRow
	if strings.HasPrefix(body, "$") {
		kind = TokenListAnchor
		body = strings.TrimSpace(body[1:])
	}

	name, rest, ok := splitCall(body)
	if !ok || !strings.HasSuffix(rest, ")") {
		return Token{}, 0, false
	}
	args := rest[1 : len(rest)-1]

	tok := Token{Kind: kind, Raw: s[:n], Name: name}
	if kind == TokenListAnchor {
		id, title, _ := strings.Cut(args, ",")
		tok.Arg = strings.TrimSpace(id)
		tok.Title = strings.TrimSpace(title)
	} else {
		tok.Arg = strings.TrimSpace(args)
	}
	if tok.Arg == "" {
		return Token{}, 0, false
	}
	return tok, n, true
}

// splitCall отделяет имя вызова "name(...)" от остатка, начинающегося с "(".
func splitCall(s string) (name, rest string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 {
		return "", "", false
	}
	name = strings.TrimSpace(s[:open])
	if !isName(name) {
		return "", "", false
	}
	return name, s[open:], true
}

// isName проверяет имя ключа, функции, списка или поля.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// rewrite переписывает строку по токенам.
//
// fn возвращает замену и true, если токен обработан. Необработанные токены
// остаются как есть; тело необработанного вызова функции переписывается
// рекурсивно, чтобы вложенные [[ ]] и << >> внутри аргументов были видны
// проходам ключей и списков.
func rewrite(s string, fn func(Token) (string, bool)) string {
	if !strings.Contains(s, scalarOpen) && !strings.Contains(s, funcOpen) && !strings.Contains(s, listOpen) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, tok := range Tokenize(s) {
		if tok.Kind != TokenText {
			if out, ok := fn(tok); ok {
				sb.WriteString(out)
				continue
			}
		}
		if tok.Kind == TokenFuncCall {
			sb.WriteString(funcOpen)
			sb.WriteString(rewrite(tok.Inner, fn))
			sb.WriteString(funcClose)
			continue
		}
		sb.WriteString(tok.Raw)
	}
	return sb.String()
}
