package renderer

import "errors"

// Ошибки рендерера.
var (
	// ErrJobNotFound: задание не найдено в БД.
	ErrJobNotFound = errors.New("render job not found")

	// ErrJobNotPending: задание уже взято другим воркером или завершено.
	ErrJobNotPending = errors.New("render job is not pending")

	// ErrContractMissing: снимок контракта задания удалён.
	ErrContractMissing = errors.New("contract not found")

	// ErrTemplateMissing: у типа контракта нет нужной версии шаблона.
	ErrTemplateMissing = errors.New("template version not found")

	// ErrNoPrinter: запрошен PDF, но принтер не настроен.
	ErrNoPrinter = errors.New("pdf printer not configured")
)
