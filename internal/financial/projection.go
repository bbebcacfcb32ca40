// Package financial computes deterministic revenue projections for the
// simulator. All functions are pure arithmetic over the input parameters.
//
// Two quirks of the shipped product are preserved on purpose and must not be
// "fixed" without product sign-off, since every consumer (scenario cards,
// chart) is internally consistent with them:
//
//   - Lucro subtracts investimentoTotal both inside the cost rollup and again
//     in the final profit line, double-counting investment against revenue.
//   - VendasNecessarias is rounded up before being multiplied back by the
//     ticket, slightly overstating revenue versus the literal conversion rate.
package financial

import (
	"errors"
	"fmt"
	"math"
)

// Parameters is the user-editable simulation input. Percent fields are
// 0-100; monetary fields are in BRL.
type Parameters struct {
	TicketMedio        float64 `json:"ticketMedio"`
	TaxaConversao      float64 `json:"taxaConversao"`
	InvestimentoMensal float64 `json:"investimentoMensal"`
	CustoProduto       float64 `json:"custoProduto"`
	MargemLucro        float64 `json:"margemLucro"`
	Periodo            int     `json:"periodo"` // months
}

// Projection is the derived summary over the whole period.
type Projection struct {
	ReceitaBruta      float64 `json:"receitaBruta"`
	ReceitaLiquida    float64 `json:"receitaLiquida"`
	Custos            float64 `json:"custos"`
	Lucro             float64 `json:"lucro"`
	ROI               float64 `json:"roi"`
	TicketMedio       float64 `json:"ticketMedio"`
	VendasNecessarias int     `json:"vendasNecessarias"`
	InvestimentoTotal float64 `json:"investimentoTotal"`
}

// ChartPoint is one month of the cumulative series.
type ChartPoint struct {
	Mes          string  `json:"mes"`
	Receita      float64 `json:"receita"`
	Lucro        float64 `json:"lucro"`
	Investimento float64 `json:"investimento"`
}

// Scenario pairs a named parameter variant with its projection.
type Scenario struct {
	Name       string     `json:"name"`
	Projection Projection `json:"projection"`
}

var errInvalidParams = errors.New("financial: parâmetros inválidos")

// Validate rejects parameter sets the engine would silently degenerate on.
// Callers validate before projecting; Project itself never fails.
func Validate(p Parameters) error {
	if p.Periodo < 1 {
		return fmt.Errorf("%w: período deve ser de pelo menos 1 mês", errInvalidParams)
	}
	if p.TicketMedio < 0 || p.TaxaConversao < 0 || p.InvestimentoMensal < 0 ||
		p.CustoProduto < 0 || p.MargemLucro < 0 {
		return fmt.Errorf("%w: valores não podem ser negativos", errInvalidParams)
	}
	if p.TaxaConversao > 100 || p.MargemLucro > 100 {
		return fmt.Errorf("%w: percentuais devem estar entre 0 e 100", errInvalidParams)
	}
	return nil
}

// monthlySales is the minimum unit sales per month covering the monthly ad
// spend at the given ticket and conversion rate. A zero denominator clamps
// to 0 instead of producing Inf/NaN.
func monthlySales(p Parameters) int {
	denom := p.TicketMedio * (p.TaxaConversao / 100)
	if denom <= 0 {
		return 0
	}
	return int(math.Ceil(p.InvestimentoMensal / denom))
}

// Project computes the period summary. Pure and total.
func Project(p Parameters) Projection {
	periodo := float64(p.Periodo)
	investimentoTotal := p.InvestimentoMensal * periodo

	vendas := monthlySales(p)

	receitaBrutaMensal := float64(vendas) * p.TicketMedio
	receitaBrutaTotal := receitaBrutaMensal * periodo

	custoProdutoMensal := float64(vendas) * p.CustoProduto
	custoTotal := custoProdutoMensal*periodo + investimentoTotal

	receitaLiquidaTotal := receitaBrutaTotal - custoTotal
	lucroTotal := receitaLiquidaTotal - investimentoTotal

	roi := 0.0
	if investimentoTotal > 0 {
		roi = (lucroTotal / investimentoTotal) * 100
	}

	return Projection{
		ReceitaBruta:      receitaBrutaTotal,
		ReceitaLiquida:    receitaLiquidaTotal,
		Custos:            custoTotal,
		Lucro:             lucroTotal,
		ROI:               roi,
		TicketMedio:       p.TicketMedio,
		VendasNecessarias: vendas,
		InvestimentoTotal: investimentoTotal,
	}
}

// Scenarios runs the three named variants through Project.
func Scenarios(base Parameters) []Scenario {
	conservador := base
	conservador.TaxaConversao = base.TaxaConversao * 0.7
	conservador.TicketMedio = base.TicketMedio * 0.9

	otimista := base
	otimista.TaxaConversao = base.TaxaConversao * 1.3
	otimista.TicketMedio = base.TicketMedio * 1.1

	return []Scenario{
		{Name: "Conservador", Projection: Project(conservador)},
		{Name: "Realista", Projection: Project(base)},
		{Name: "Otimista", Projection: Project(otimista)},
	}
}

// ChartSeries produces the cumulative month-by-month series. The monthly
// sales figure is computed once from the base parameters, not per month.
// A period below 1 yields an empty series.
func ChartSeries(p Parameters) []ChartPoint {
	if p.Periodo < 1 {
		return []ChartPoint{}
	}

	vendas := float64(monthlySales(p))
	receitaMensal := vendas * p.TicketMedio

	out := make([]ChartPoint, 0, p.Periodo)
	receitaAcumulada := 0.0
	investimentoAcumulado := 0.0
	for i := 1; i <= p.Periodo; i++ {
		receitaAcumulada += receitaMensal
		investimentoAcumulado += p.InvestimentoMensal
		out = append(out, ChartPoint{
			Mes:          fmt.Sprintf("Mês %d", i),
			Receita:      receitaAcumulada,
			Lucro:        receitaAcumulada - vendas*p.CustoProduto*float64(i) - investimentoAcumulado,
			Investimento: investimentoAcumulado,
		})
	}
	return out
}
