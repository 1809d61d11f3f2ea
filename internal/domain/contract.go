package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contract описывает неизменяемый снимок данных контракта.
//
// Снимок собирается upstream-формами (CRUD) и передаётся в движок шаблонов
// целиком. Движок не валидирует бизнес-правила: форма данных гарантируется
// до рендеринга.
type Contract struct {
	// ID идентифицирует контракт.
	ID uuid.UUID `json:"id"`

	// Number задаёт номер контракта, видимый клиенту.
	Number string `json:"number"`

	// ContractTypeID ссылается на тип контракта, который хранит HTML-шаблон.
	ContractTypeID uuid.UUID `json:"contract_type_id"`

	Customer  Customer  `json:"customer"`
	Plan      Plan      `json:"plan"`
	Telephony Telephony `json:"telephony"`

	// Products перечислены в порядке добавления в контракт.
	Products []Product `json:"products,omitempty"`

	// Renewals содержит историю продлений, от старых к новым.
	Renewals []Renewal `json:"renewals,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`

	// LoyaltyMonths задаёт срок лояльности (fidelidade) в месяцах.
	LoyaltyMonths int `json:"loyalty_months,omitempty"`

	// AutoRenew включает автоматическое продление.
	AutoRenew bool `json:"auto_renew"`

	// Notes попадает в шаблон как есть.
	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Customer описывает сторону договора.
type Customer struct {
	Name string `json:"name"`

	// TradeName заполняется только для юрлиц.
	TradeName string `json:"trade_name,omitempty"`

	// Document хранит CPF или CNPJ без форматирования.
	Document string `json:"document"`

	StateRegistration string  `json:"state_registration,omitempty"`
	Email             string  `json:"email,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	Address           Address `json:"address"`

	// Representative подписывает договор от имени юрлица.
	Representative string `json:"representative,omitempty"`
}

// Address описывает адрес клиента.
type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

// Plan описывает тарифный план и его ценообразование.
type Plan struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Price задаёт ежемесячную плату, которая распределяется по композиции.
	Price float64 `json:"price"`

	// Benefit задаёт ежемесячную скидку, добавляемую к цене для суммы "com benefício".
	Benefit float64 `json:"benefit"`

	// InstallationFee взимается один раз.
	InstallationFee float64 `json:"installation_fee,omitempty"`

	// DueDay задаёт день месяца для оплаты.
	DueDay int `json:"due_day,omitempty"`

	// Composition может отсутствовать: тогда итоги считаются нулевыми.
	Composition *Composition `json:"composition,omitempty"`
}

// Composition описывает фискальную структуру плана.
type Composition struct {
	Name string `json:"name"`

	// UsesAbsoluteValue переключает позиции с процентов на абсолютные суммы.
	UsesAbsoluteValue bool `json:"uses_absolute_value"`

	Items []CompositionItem `json:"items"`
}

// CompositionItem описывает одну строку композиции.
type CompositionItem struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`

	// Value используется при UsesAbsoluteValue.
	Value float64 `json:"value,omitempty"`

	// Percent используется, когда композиция процентная.
	Percent float64 `json:"percent,omitempty"`

	// IsAutocomplete помечает позицию, которая забирает остаток цены.
	IsAutocomplete bool `json:"is_autocomplete"`
}

// Telephony описывает телефонную часть контракта.
type Telephony struct {
	// DDR включает сокращённое отображение диапазонов номеров.
	DDR bool `json:"ddr"`

	Channels int `json:"channels,omitempty"`

	Numbers []PhoneNumber `json:"numbers,omitempty"`
}

// PhoneNumber описывает выделенный номер.
type PhoneNumber struct {
	Number string `json:"number"`

	// Portability помечает номер, перенесённый от другого оператора.
	Portability bool `json:"portability"`
}

// Product описывает дополнительную услугу контракта.
type Product struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`

	// IsBenefit помечает продукт, предоставленный как бонус.
	IsBenefit bool `json:"is_benefit"`
}

// Total возвращает стоимость позиции.
func (p Product) Total() float64 {
	return float64(p.Quantity) * p.UnitPrice
}

// Renewal описывает одно продление контракта.
type Renewal struct {
	RenewedAt     time.Time `json:"renewed_at"`
	PreviousEnd   time.Time `json:"previous_end"`
	NewEnd        time.Time `json:"new_end"`
	PreviousPrice float64   `json:"previous_price"`
	NewPrice      float64   `json:"new_price"`
}

// LastRenewal возвращает последнее продление или nil.
func (c *Contract) LastRenewal() *Renewal {
	if len(c.Renewals) == 0 {
		return nil
	}
	return &c.Renewals[len(c.Renewals)-1]
}
