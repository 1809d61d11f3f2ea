package document

import "errors"

var (
	// ErrParse: HTML не удалось разобрать.
	ErrParse = errors.New("document parse failed")

	// ErrRender: дерево не удалось сериализовать.
	ErrRender = errors.New("document render failed")
)
