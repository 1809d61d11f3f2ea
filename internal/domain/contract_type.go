package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContractType описывает вид контракта ("PABX em nuvem", "Link dedicado" и т.д.).
//
// Каждый тип хранит версии HTML-шаблона. Рендер всегда выполняется
// по конкретной версии, чтобы уже выпущенные документы можно было
// воспроизвести.
type ContractType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`

	// IsActive выключает тип для новых рендеров, не удаляя историю.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TemplateVersion хранит одну версию HTML-шаблона типа контракта.
type TemplateVersion struct {
	ContractTypeID uuid.UUID `json:"contract_type_id"`

	// Version автоинкрементируется при создании (1, 2, 3, ...).
	Version int `json:"version"`

	// HTML содержит шаблон с токенами [[ ]], {{ }} и << >>.
	HTML string `json:"html"`

	CreatedAt time.Time `json:"created_at"`
}
