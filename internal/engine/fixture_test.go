package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Contracta/internal/domain"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

// sampleContract возвращает контракт со всеми разделами заполненными.
func sampleContract() *domain.Contract {
	return &domain.Contract{
		ID:     uuid.MustParse("6f1c2b9e-1a3d-4d2b-9a55-0c0e3f9d7b11"),
		Number: "CT-2026-0042",
		Customer: domain.Customer{
			Name:     "Padaria Pão Quente Ltda",
			Document: "12345678000195",
			Address: domain.Address{
				Street:       "Rua das Flores",
				Number:       "100",
				Neighborhood: "Centro",
				City:         "Curitiba",
				State:        "PR",
				ZipCode:      "80000-000",
			},
		},
		Plan: domain.Plan{
			Name:    "Fibra 500",
			Price:   100,
			Benefit: 20,
			DueDay:  10,
			Composition: &domain.Composition{
				Name: "Padrão",
				Items: []domain.CompositionItem{
					{Name: "Serviço de valor adicionado", ShortName: "SVA", Percent: 50},
					{Name: "Comunicação multimídia", ShortName: "SCM", IsAutocomplete: true},
				},
			},
		},
		Telephony: domain.Telephony{
			DDR:      true,
			Channels: 4,
			Numbers: []domain.PhoneNumber{
				{Number: "4130300025"},
				{Number: "4130300010"},
				{Number: "4130300030"},
				{Number: "4130300020"},
			},
		},
		Products: []domain.Product{
			{Name: "Roteador", Quantity: 2, UnitPrice: 15},
			{Name: "IP fixo", Quantity: 1, UnitPrice: 30, IsBenefit: true},
		},
		StartDate: ptr(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
		AutoRenew: true,
	}
}
