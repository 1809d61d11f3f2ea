package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout: dd/MM/yyyy.
const dateLayout = "02/01/2006"

const (
	yes = "Sim"
	no  = "Não"
)

// numberPrefix повторяет parseFloat: берётся самый длинный числовой префикс.
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumber разбирает аргумент функции. Нечисловой аргумент даёт NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	m := numberPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// formatDecimal форматирует число с двумя знаками после точки.
func formatDecimal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	if v == 0 {
		v = 0 // -0 → 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatInteger отбрасывает дробную часть.
func formatInteger(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	t := math.Trunc(v)
	if t == 0 {
		return "0"
	}
	return strconv.FormatFloat(t, 'f', 0, 64)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatBool(b bool) string {
	if b {
		return yes
	}
	return no
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}

// formatDocument применяет маску CPF (11 цифр) или CNPJ (14 цифр).
// Прочие значения возвращаются как есть.
func formatDocument(doc string) string {
	digits := onlyDigits(doc)
	switch len(digits) {
	case 11:
		return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
	case 14:
		return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
	default:
		return doc
	}
}

func onlyDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// joinNonEmpty соединяет непустые части через sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
