package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/shaiso/Contracta/internal/domain"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestProrate_NoComposition(t *testing.T) {
	if p := Prorate(nil, 100, 20); p != nil {
		t.Errorf("expected nil for missing composition, got %+v", p)
	}
	if p := Prorate(&domain.Composition{Name: "vazia"}, 100, 20); p != nil {
		t.Errorf("expected nil for empty composition, got %+v", p)
	}

	var p *Proration
	without, with := p.Totals()
	if without != 0 || with != 0 {
		t.Errorf("nil proration totals should be zero, got %v/%v", without, with)
	}
}

func TestProrate_RemainderDropped(t *testing.T) {
	c := &domain.Composition{Items: []domain.CompositionItem{
		{Name: "Serviço", ShortName: "SVA", Percent: 50},
	}}

	got := Prorate(c, 100, 20)
	want := &Proration{
		Items: []ParsedCompositionItem{
			{Name: "Serviço", ShortName: "SVA", ValueWithoutBenefit: 50, ValueWithBenefit: 60},
		},
		TotalWithoutBenefit: 50,
		TotalWithBenefit:    60,
		DroppedRemainder:    50,
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Prorate mismatch (-want +got):\n%s", diff)
	}
}

func TestProrate_Autocomplete(t *testing.T) {
	c := &domain.Composition{Items: []domain.CompositionItem{
		{Name: "Serviço", ShortName: "SVA", Percent: 50},
		{Name: "Telecom", ShortName: "SCM", IsAutocomplete: true},
	}}

	got := Prorate(c, 100, 20)
	want := &Proration{
		Items: []ParsedCompositionItem{
			{Name: "Telecom", ShortName: "SCM", ValueWithoutBenefit: 50, ValueWithBenefit: 60},
			{Name: "Serviço", ShortName: "SVA", ValueWithoutBenefit: 50, ValueWithBenefit: 60},
		},
		TotalWithoutBenefit: 100,
		TotalWithBenefit:    120,
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Prorate mismatch (-want +got):\n%s", diff)
	}
}

func TestProrate_AutocompleteOrderReversed(t *testing.T) {
	c := &domain.Composition{
		UsesAbsoluteValue: true,
		Items: []domain.CompositionItem{
			{Name: "A", IsAutocomplete: true},
			{Name: "Fixo", Value: 40},
			{Name: "B", IsAutocomplete: true},
		},
	}

	got := Prorate(c, 100, 0)
	names := make([]string, len(got.Items))
	for i, it := range got.Items {
		names[i] = it.Name
	}
	if diff := cmp.Diff([]string{"B", "A", "Fixo"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got.Items[0].ValueWithoutBenefit != 30 || got.Items[1].ValueWithoutBenefit != 30 {
		t.Errorf("remainder should split evenly, got %+v", got.Items)
	}
}

func TestProrate_ZeroPrice(t *testing.T) {
	c := &domain.Composition{
		UsesAbsoluteValue: true,
		Items:             []domain.CompositionItem{{Name: "Fixo", Value: 10}},
	}

	got := Prorate(c, 0, 20)
	if got.Items[0].ValueWithBenefit != 0 {
		t.Errorf("scale factor must be zero for zero price, got %v", got.Items[0].ValueWithBenefit)
	}
	if got.DroppedRemainder != 0 {
		t.Errorf("remainder must be clamped at zero, got %v", got.DroppedRemainder)
	}
}
