package repo

import "errors"

// Ошибки репозиториев. Нарушения ограничений PostgreSQL переводятся
// в них через mapError.
var (
	// ErrNotFound: запись не найдена.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists: нарушена уникальность (имя типа, номер контракта).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState: на запись ссылаются другие записи, или задание
	// уже забрал другой воркер.
	ErrInvalidState = errors.New("invalid state")
)
