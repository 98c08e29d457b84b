package handler

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/pkg/utils"
)

const monthLayout = "2006-01"

// Rótulo do bucket mensal com datas inválidas
const unknownMonthLabel = domain.UnknownLabel

type KPI struct {
	Label     string  `json:"label"`
	Value     float64 `json:"valor"`
	Formatted string  `json:"formatado"`
}

type ChartPoint struct {
	Label string  `json:"x"`
	Value float64 `json:"y"`
}

type ChartsView struct {
	Empty            bool         `json:"empty"`
	Message          string       `json:"message,omitempty"`
	KPIs             []KPI        `json:"kpis"`
	MonthlyRevenue   []ChartPoint `json:"receita_mensal"`
	MonthlyMargin    []ChartPoint `json:"margem_mensal"`
	MonthlyMarginPct []ChartPoint `json:"margem_pct_mensal"`
	ProductLineShare []ChartPoint `json:"receita_por_linha"`
	SupplierMargin   []ChartPoint `json:"margem_por_fornecedor"`
}

// NewChartsView formata o resultado para os gráficos. Percentuais mensais nulos viram zero.
func NewChartsView(result *domain.AggregateResult) ChartsView {
	view := ChartsView{
		KPIs:             kpis(result.Totals),
		MonthlyRevenue:   make([]ChartPoint, 0, len(result.MonthlySeries)),
		MonthlyMargin:    make([]ChartPoint, 0, len(result.MonthlySeries)),
		MonthlyMarginPct: make([]ChartPoint, 0, len(result.MonthlySeries)),
		ProductLineShare: make([]ChartPoint, 0, len(result.ByProductLine)),
		SupplierMargin:   make([]ChartPoint, 0, len(result.BySupplier)),
	}

	if result.Empty() {
		view.Empty = true
		view.Message = EmptyResultMessage
	}

	for _, point := range result.MonthlySeries {
		label := monthLabel(point.Month)
		view.MonthlyRevenue = append(view.MonthlyRevenue, ChartPoint{Label: label, Value: utils.RoundWithTwoDecimalPlace(point.Revenue)})
		view.MonthlyMargin = append(view.MonthlyMargin, ChartPoint{Label: label, Value: utils.RoundWithTwoDecimalPlace(point.Margin)})
		view.MonthlyMarginPct = append(view.MonthlyMarginPct, ChartPoint{Label: label, Value: valueOrZero(point.MarginPct)})
	}

	for _, line := range result.ByProductLine {
		view.ProductLineShare = append(view.ProductLineShare, ChartPoint{Label: line.Line, Value: utils.RoundWithTwoDecimalPlace(line.Revenue)})
	}

	for _, supplier := range result.BySupplier {
		view.SupplierMargin = append(view.SupplierMargin, ChartPoint{Label: supplier.Supplier, Value: utils.RoundWithTwoDecimalPlace(supplier.Margin)})
	}

	return view
}

// Casas decimais dos percentuais: cartão de KPI inteiro, tabela com uma casa
const (
	kpiPercentPlaces   = 0
	tablePercentPlaces = 1
)

func kpis(totals domain.Totals) []KPI {
	return []KPI{
		{Label: "Receita Total", Value: utils.Finite(totals.Revenue), Formatted: utils.FormatCurrency(totals.Revenue)},
		{Label: "Custos Totais", Value: utils.Finite(totals.Cost), Formatted: utils.FormatCurrency(totals.Cost)},
		{Label: "Margem Bruta", Value: utils.Finite(totals.Margin), Formatted: utils.FormatCurrency(totals.Margin)},
		{Label: "Margem %", Value: utils.Finite(totals.MarginPct), Formatted: utils.FormatPercent(totals.MarginPct, kpiPercentPlaces)},
	}
}

func monthLabel(month *time.Time) string {
	if month == nil {
		return unknownMonthLabel
	}
	return month.Format(monthLayout)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return utils.Finite(*v)
}

// Colunas aceitas em ?ordenar=
const (
	SortByTeam      = "equipe"
	SortByRep       = "vendedor"
	SortByRevenue   = "receita"
	SortByMargin    = "margem_bruta"
	SortByMarginPct = "margem_pct"
)

type TeamSort struct {
	Column string
	Desc   bool
}

func parseTeamSort(query url.Values) (*TeamSort, error) {
	column := strings.ToLower(strings.TrimSpace(query.Get("ordenar")))
	if column == "" {
		return nil, nil
	}

	switch column {
	case SortByTeam, SortByRep, SortByRevenue, SortByMargin, SortByMarginPct:
	default:
		return nil, fmt.Errorf("coluna de ordenação inválida: %s", column)
	}

	direction := strings.ToLower(strings.TrimSpace(query.Get("direcao")))
	if direction != "" && direction != "asc" && direction != "desc" {
		return nil, fmt.Errorf("direção de ordenação inválida: %s", direction)
	}

	return &TeamSort{Column: column, Desc: direction == "desc"}, nil
}

type TeamPerformanceRow struct {
	Team               string   `json:"equipe"`
	Rep                string   `json:"vendedor"`
	Revenue            float64  `json:"receita"`
	Margin             float64  `json:"margem_bruta"`
	MarginPct          *float64 `json:"margem_pct"`
	RevenueFormatted   string   `json:"receita_formatada"`
	MarginFormatted    string   `json:"margem_bruta_formatada"`
	MarginPctFormatted string   `json:"margem_pct_formatada"`
}

type TeamPerformanceView struct {
	Empty   bool                 `json:"empty"`
	Message string               `json:"message,omitempty"`
	Rows    []TeamPerformanceRow `json:"linhas"`
}

// NewTeamPerformanceView monta a tabela de equipe e vendedor. Sem ordenação mantém a ordem de aparição.
func NewTeamPerformanceView(result *domain.AggregateResult, sortBy *TeamSort) TeamPerformanceView {
	view := TeamPerformanceView{Rows: make([]TeamPerformanceRow, 0, len(result.ByTeamRep))}
	if result.Empty() {
		view.Empty = true
		view.Message = EmptyResultMessage
	}

	for _, perf := range result.ByTeamRep {
		row := TeamPerformanceRow{
			Team:             perf.Team,
			Rep:              perf.Rep,
			Revenue:          utils.RoundWithTwoDecimalPlace(perf.Revenue),
			Margin:           utils.RoundWithTwoDecimalPlace(perf.Margin),
			RevenueFormatted: utils.FormatCurrency(perf.Revenue),
			MarginFormatted:  utils.FormatCurrency(perf.Margin),
		}
		if perf.MarginPct != nil {
			pct := utils.RoundWithTwoDecimalPlace(*perf.MarginPct * 100)
			row.MarginPct = &pct
			row.MarginPctFormatted = utils.FormatPercent(*perf.MarginPct, tablePercentPlaces)
		}
		view.Rows = append(view.Rows, row)
	}

	if sortBy != nil {
		sortRows(view.Rows, *sortBy)
	}

	return view
}

func sortRows(rows []TeamPerformanceRow, sortBy TeamSort) {
	less := func(a, b TeamPerformanceRow) bool {
		switch sortBy.Column {
		case SortByTeam:
			return a.Team < b.Team
		case SortByRep:
			return a.Rep < b.Rep
		case SortByRevenue:
			return a.Revenue < b.Revenue
		case SortByMargin:
			return a.Margin < b.Margin
		default:
			return *a.MarginPct < *b.MarginPct
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		// margem % nula sempre no fim, em qualquer direção
		if sortBy.Column == SortByMarginPct && (a.MarginPct == nil || b.MarginPct == nil) {
			return a.MarginPct != nil && b.MarginPct == nil
		}

		if sortBy.Desc {
			a, b = b, a
		}
		return less(a, b)
	})
}
