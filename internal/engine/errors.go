package engine

import "errors"

// Ошибки движка шаблонов.
//
// Проблемы данных (неизвестный ключ, функция или якорь) ошибками не
// являются: токен остаётся в документе как есть. Ошибки возвращаются
// только для разбора шаблона и синтаксиса отдельных выражений.
var (
	// ErrCallSyntax: выражение вызова функции не разобрано.
	ErrCallSyntax = errors.New("invalid function call syntax")

	// ErrTemplateParse: HTML-шаблон не удалось разобрать.
	ErrTemplateParse = errors.New("template parse failed")
)
