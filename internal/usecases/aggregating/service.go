// Package aggregating calcula as visões do dashboard sobre a base enriquecida
package aggregating

import (
	"sort"
	"time"

	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
)

// Aggregator define o contrato do motor de agregação
type Aggregator interface {
	// Aggregate filtra os registros e calcula totais, série mensal, linha de produto, fornecedor e equipe/vendedor
	Aggregate(records []domain.EnrichedRecord, filter domain.FilterSelection) *domain.AggregateResult
}

type Engine struct{}

func NewEngine() Aggregator {
	return &Engine{}
}

func (e *Engine) Aggregate(records []domain.EnrichedRecord, filter domain.FilterSelection) *domain.AggregateResult {
	filtered := Filter(records, filter)

	return &domain.AggregateResult{
		Filters:       filter,
		RecordCount:   len(filtered),
		Totals:        Totals(filtered),
		MonthlySeries: MonthlySeries(filtered),
		ByProductLine: ByProductLine(filtered),
		BySupplier:    BySupplier(filtered),
		ByTeamRep:     ByTeamRep(filtered),
	}
}

// Filter retorna os registros que atendem a todos os filtros. A base original não é alterada.
func Filter(records []domain.EnrichedRecord, filter domain.FilterSelection) []domain.EnrichedRecord {
	filtered := make([]domain.EnrichedRecord, 0, len(records))
	for i := range records {
		if filter.Matches(&records[i]) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered
}

// Totals soma receita e custos ignorando nulos. A margem total é recalculada a partir dos totais.
func Totals(records []domain.EnrichedRecord) domain.Totals {
	var totals domain.Totals
	for i := range records {
		totals.Revenue += value(records[i].Revenue)
		totals.Cost += value(records[i].Cost)
	}

	totals.Margin = totals.Revenue - totals.Cost
	if totals.Revenue != 0 {
		totals.MarginPct = totals.Margin / totals.Revenue
	}

	return totals
}

// MonthlySeries agrupa por mês em ordem crescente; registros sem data formam o último grupo (Month nil)
func MonthlySeries(records []domain.EnrichedRecord) []domain.MonthlyPoint {
	byMonth := make(map[time.Time]*domain.MonthlyPoint)
	var unknown *domain.MonthlyPoint

	for i := range records {
		r := &records[i]

		var point *domain.MonthlyPoint
		if r.YearMonth == nil {
			if unknown == nil {
				unknown = &domain.MonthlyPoint{}
			}
			point = unknown
		} else {
			point = byMonth[*r.YearMonth]
			if point == nil {
				month := *r.YearMonth
				point = &domain.MonthlyPoint{Month: &month}
				byMonth[month] = point
			}
		}

		point.Revenue += value(r.Revenue)
		point.Margin += value(r.GrossMargin)
	}

	series := make([]domain.MonthlyPoint, 0, len(byMonth)+1)
	for _, point := range byMonth {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(*series[j].Month)
	})

	if unknown != nil {
		series = append(series, *unknown)
	}

	for i := range series {
		series[i].MarginPct = domain.Ratio(&series[i].Margin, &series[i].Revenue)
	}

	return series
}

// ByProductLine soma a receita por linha de produto, da maior para a menor
func ByProductLine(records []domain.EnrichedRecord) []domain.LineRevenue {
	groups := newGroups[domain.LineRevenue]()
	for i := range records {
		r := &records[i]
		label := labelOf(r.ProductLine)
		item := groups.get(label, func() domain.LineRevenue { return domain.LineRevenue{Line: label} })
		item.Revenue += value(r.Revenue)
	}

	lines := groups.list()
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Revenue > lines[j].Revenue
	})

	return lines
}

// BySupplier soma a margem bruta por fornecedor, da menor para a maior
// (barras horizontais exibem o maior valor no topo)
func BySupplier(records []domain.EnrichedRecord) []domain.SupplierMargin {
	groups := newGroups[domain.SupplierMargin]()
	for i := range records {
		r := &records[i]
		label := labelOf(r.Supplier)
		item := groups.get(label, func() domain.SupplierMargin { return domain.SupplierMargin{Supplier: label} })
		item.Margin += value(r.GrossMargin)
	}

	suppliers := groups.list()
	sort.SliceStable(suppliers, func(i, j int) bool {
		return suppliers[i].Margin < suppliers[j].Margin
	})

	return suppliers
}

// ByTeamRep soma receita e margem por par equipe/vendedor, na ordem em que aparecem
func ByTeamRep(records []domain.EnrichedRecord) []domain.TeamRepPerformance {
	groups := newGroups[domain.TeamRepPerformance]()
	for i := range records {
		r := &records[i]
		team, rep := labelOf(r.Team), labelOf(r.Rep)

		item := groups.get(team+"\x00"+rep, func() domain.TeamRepPerformance {
			return domain.TeamRepPerformance{Team: team, Rep: rep}
		})
		item.Revenue += value(r.Revenue)
		item.Margin += value(r.GrossMargin)
	}

	rows := groups.list()
	for i := range rows {
		rows[i].MarginPct = domain.Ratio(&rows[i].Margin, &rows[i].Revenue)
	}

	return rows
}

// groups mantém a ordem de primeira ocorrência de cada chave
type groups[T any] struct {
	order []string
	items map[string]*T
}

func newGroups[T any]() *groups[T] {
	return &groups[T]{items: make(map[string]*T)}
}

func (g *groups[T]) get(key string, init func() T) *T {
	item, ok := g.items[key]
	if !ok {
		v := init()
		item = &v
		g.items[key] = item
		g.order = append(g.order, key)
	}
	return item
}

func (g *groups[T]) list() []T {
	out := make([]T, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.items[key])
	}
	return out
}

func labelOf(s *string) string {
	if s == nil {
		return domain.UnknownLabel
	}
	return *s
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
