package domain

// RenderStatus задаёт статус задания рендеринга.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
type RenderStatus string

const (
	// RenderStatusPending: задание создано и ждёт воркера.
	RenderStatusPending RenderStatus = "PENDING"

	// RenderStatusRunning: воркер рендерит документ.
	RenderStatusRunning RenderStatus = "RUNNING"

	// RenderStatusSucceeded: документ сохранён.
	RenderStatusSucceeded RenderStatus = "SUCCEEDED"

	// RenderStatusFailed: рендер не удался (нет шаблона, ошибка печати).
	RenderStatusFailed RenderStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s RenderStatus) IsTerminal() bool {
	switch s {
	case RenderStatusSucceeded, RenderStatusFailed:
		return true
	default:
		return false
	}
}

// ParseRenderStatus парсит строку в RenderStatus.
// Неизвестные значения возвращают пустой статус (без фильтра).
func ParseRenderStatus(s string) RenderStatus {
	switch s {
	case "PENDING":
		return RenderStatusPending
	case "RUNNING":
		return RenderStatusRunning
	case "SUCCEEDED":
		return RenderStatusSucceeded
	case "FAILED":
		return RenderStatusFailed
	default:
		return ""
	}
}

// OutputFormat задаёт формат результата рендера.
type OutputFormat string

const (
	OutputFormatHTML OutputFormat = "html"
	OutputFormatPDF  OutputFormat = "pdf"
)

// IsValid проверяет, поддерживается ли формат.
func (f OutputFormat) IsValid() bool {
	return f == OutputFormatHTML || f == OutputFormatPDF
}

// ContentType возвращает MIME-тип результата.
func (f OutputFormat) ContentType() string {
	if f == OutputFormatPDF {
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}
