package engine

import "github.com/shaiso/Contracta/internal/domain"

// ParsedCompositionItem: строка композиции после распределения цены.
type ParsedCompositionItem struct {
	Name                string  `json:"name"`
	ShortName           string  `json:"short_name"`
	ValueWithBenefit    float64 `json:"value_with_benefit"`
	ValueWithoutBenefit float64 `json:"value_without_benefit"`
}

// Proration: результат распределения месячной цены.
type Proration struct {
	Items               []ParsedCompositionItem `json:"items"`
	TotalWithoutBenefit float64                 `json:"total_without_benefit"`
	TotalWithBenefit    float64                 `json:"total_with_benefit"`

	// DroppedRemainder: остаток цены, который некому было отдать
	// (остаток > 0, но в композиции нет autocomplete-позиций).
	DroppedRemainder float64 `json:"dropped_remainder,omitempty"`
}

// Prorate распределяет месячную цену price по позициям композиции.
//
// Алгоритм:
//  1. totalWithBenefit = price + benefit, scaleFactor = totalWithBenefit / price
//     (при price = 0 scaleFactor = 0).
//  2. Для процентной композиции value = price * percent / 100.
//  3. Фиксированные позиции получают value и value * scaleFactor.
//  4. Остаток max(0, price − Σ фиксированных) делится поровну между
//     autocomplete-позициями.
//  5. Каждая autocomplete-позиция добавляется в НАЧАЛО результата, поэтому
//     их относительный порядок обратный порядку в композиции.
//
// Возвращает nil, если композиции нет или в ней нет позиций.
// Вызывающий код должен считать итоги нулевыми.
func Prorate(c *domain.Composition, price, benefit float64) *Proration {
	if c == nil || len(c.Items) == 0 {
		return nil
	}

	totalWithBenefit := price + benefit
	var scaleFactor float64
	if price != 0 {
		scaleFactor = totalWithBenefit / price
	}

	values := make([]float64, len(c.Items))
	for i, item := range c.Items {
		if c.UsesAbsoluteValue {
			values[i] = item.Value
		} else {
			values[i] = price * item.Percent / 100
		}
	}

	p := &Proration{}
	autocomplete := make([]int, 0, len(c.Items))

	for i, item := range c.Items {
		if item.IsAutocomplete {
			autocomplete = append(autocomplete, i)
			continue
		}
		parsed := ParsedCompositionItem{
			Name:                item.Name,
			ShortName:           item.ShortName,
			ValueWithoutBenefit: values[i],
			ValueWithBenefit:    values[i] * scaleFactor,
		}
		p.Items = append(p.Items, parsed)
		p.TotalWithoutBenefit += parsed.ValueWithoutBenefit
		p.TotalWithBenefit += parsed.ValueWithBenefit
	}

	remainder := max(0, price-p.TotalWithoutBenefit)
	if len(autocomplete) == 0 {
		p.DroppedRemainder = remainder
		return p
	}

	perItem := remainder / float64(len(autocomplete))
	for _, i := range autocomplete {
		item := c.Items[i]
		parsed := ParsedCompositionItem{
			Name:                item.Name,
			ShortName:           item.ShortName,
			ValueWithoutBenefit: perItem,
			ValueWithBenefit:    perItem * scaleFactor,
		}
		p.Items = append([]ParsedCompositionItem{parsed}, p.Items...)
		p.TotalWithoutBenefit += parsed.ValueWithoutBenefit
		p.TotalWithBenefit += parsed.ValueWithBenefit
	}

	return p
}

// Totals возвращает итоги с нулями по умолчанию для nil.
func (p *Proration) Totals() (withoutBenefit, withBenefit float64) {
	if p == nil {
		return 0, 0
	}
	return p.TotalWithoutBenefit, p.TotalWithBenefit
}
