package aggregating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
)

const epsilon = 1e-9

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }
func int64Ptr(v int64) *int64 { return &v }
func stringPtr(v string) *string { return &v }

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

type fixture struct {
	date     *time.Time
	qty      *float64
	gross    *float64
	product  *domain.ProductRecord
	team     string
	rep      string
	supervis string
}

func build(fixtures ...fixture) []domain.EnrichedRecord {
	records := make([]domain.EnrichedRecord, 0, len(fixtures))
	for _, f := range fixtures {
		tx := domain.TransactionRecord{
			EmissionDate: f.date,
			Quantity:     f.qty,
			GrossValue:   f.gross,
		}
		if f.product != nil {
			tx.ProductCode = f.product.ProductCode
		}
		if f.team != "" {
			tx.Team = stringPtr(f.team)
		}
		if f.rep != "" {
			tx.Rep = stringPtr(f.rep)
		}
		if f.supervis != "" {
			tx.Supervisor = stringPtr(f.supervis)
		}
		records = append(records, domain.Enrich(tx, f.product))
	}
	return records
}

var (
	p1 = &domain.ProductRecord{
		RawCode: "P1", ProductCode: int64Ptr(1),
		Line: stringPtr("Lentes"), Supplier: stringPtr("Acme"), UnitCost: floatPtr(50),
	}
	p2 = &domain.ProductRecord{
		RawCode: "P2", ProductCode: int64Ptr(2),
		Line: stringPtr("Armações"), Supplier: stringPtr("Beta"), UnitCost: floatPtr(30),
	}
	p3 = &domain.ProductRecord{
		RawCode: "P3", ProductCode: int64Ptr(3),
		Line: stringPtr("Acessórios"), Supplier: stringPtr("Gama"), UnitCost: floatPtr(1),
	}
)

// mixed reúne meses diferentes, produto ausente, data inválida e receita zero
func mixed() []domain.EnrichedRecord {
	return build(
		fixture{date: date(2024, 1, 15), qty: floatPtr(10), gross: floatPtr(1000), product: p1, team: "Norte", rep: "Bruno", supervis: "Ana"},
		fixture{date: date(2024, 2, 10), qty: floatPtr(5), gross: floatPtr(500), product: p1, team: "Norte", rep: "Carla", supervis: "Ana"},
		fixture{date: date(2023, 12, 1), qty: floatPtr(2), gross: floatPtr(100), product: p2, team: "Sul", rep: "Diego", supervis: "Eva"},
		fixture{date: date(2024, 1, 20), qty: floatPtr(1), gross: floatPtr(300), team: "Sul", rep: "Diego", supervis: "Eva"},
		fixture{qty: floatPtr(3), gross: floatPtr(90), product: p3, team: "Norte", rep: "Bruno", supervis: "Ana"},
		fixture{date: date(2024, 3, 5), qty: floatPtr(1), gross: floatPtr(0), product: p2, rep: "Felipe"},
		fixture{date: date(2024, 3, 6), qty: floatPtr(1), product: p2, team: "Sul", rep: "Diego", supervis: "Eva"},
	)
}

func TestEngine_Aggregate_WorkedExample(t *testing.T) {
	records := build(
		fixture{date: date(2024, 1, 15), qty: floatPtr(10), gross: floatPtr(1000), product: p1},
		fixture{date: date(2024, 2, 10), qty: floatPtr(5), gross: floatPtr(500), product: p1},
	)

	result := NewEngine().Aggregate(records, domain.FilterSelection{})

	assert.Equal(t, 2, result.RecordCount)
	assert.InDelta(t, 1500, result.Totals.Revenue, epsilon)
	assert.InDelta(t, 750, result.Totals.Cost, epsilon)
	assert.InDelta(t, 750, result.Totals.Margin, epsilon)
	assert.InDelta(t, 0.5, result.Totals.MarginPct, epsilon)

	require.Len(t, result.MonthlySeries, 2)
	assert.Equal(t, *date(2024, 1, 1), *result.MonthlySeries[0].Month)
	assert.InDelta(t, 1000, result.MonthlySeries[0].Revenue, epsilon)
	assert.InDelta(t, 500, result.MonthlySeries[0].Margin, epsilon)
	assert.Equal(t, *date(2024, 2, 1), *result.MonthlySeries[1].Month)
	assert.InDelta(t, 500, result.MonthlySeries[1].Revenue, epsilon)
	assert.InDelta(t, 250, result.MonthlySeries[1].Margin, epsilon)
}

func TestEngine_Aggregate_RecordWithoutProductCode(t *testing.T) {
	records := build(
		fixture{date: date(2024, 1, 15), qty: floatPtr(2), gross: floatPtr(100), team: "Norte", rep: "Bruno"},
		fixture{date: date(2024, 1, 16), qty: floatPtr(1), gross: floatPtr(200), product: p1, team: "Norte", rep: "Bruno"},
	)

	orphan := records[0]
	assert.Nil(t, orphan.Cost)
	assert.Nil(t, orphan.GrossMargin)
	assert.Nil(t, orphan.MarginPct)

	result := NewEngine().Aggregate(records, domain.FilterSelection{Year: intPtr(2024), Team: stringPtr("Norte")})

	assert.InDelta(t, 300, result.Totals.Revenue, epsilon)
	assert.InDelta(t, 50, result.Totals.Cost, epsilon)

	require.Len(t, result.ByProductLine, 2)
	assert.Equal(t, "Lentes", result.ByProductLine[0].Line)
	assert.Equal(t, domain.UnknownLabel, result.ByProductLine[1].Line)
	assert.InDelta(t, 100, result.ByProductLine[1].Revenue, epsilon)

	require.Len(t, result.BySupplier, 2)
	assert.Equal(t, domain.UnknownLabel, result.BySupplier[0].Supplier)
	assert.InDelta(t, 0, result.BySupplier[0].Margin, epsilon)

	require.Len(t, result.ByTeamRep, 1)
	assert.InDelta(t, 300, result.ByTeamRep[0].Revenue, epsilon)
}

func TestEngine_Aggregate_Properties(t *testing.T) {
	records := mixed()

	tests := []struct {
		name   string
		filter domain.FilterSelection
	}{
		{name: "Sem filtros", filter: domain.FilterSelection{}},
		{name: "Ano 2024", filter: domain.FilterSelection{Year: intPtr(2024)}},
		{name: "Equipe Sul", filter: domain.FilterSelection{Team: stringPtr("Sul")}},
		{name: "Supervisor e vendedor", filter: domain.FilterSelection{Supervisor: stringPtr("Ana"), Rep: stringPtr("Bruno")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewEngine().Aggregate(records, tt.filter)
			filtered := Filter(records, tt.filter)
			require.Equal(t, len(filtered), result.RecordCount)

			// totais consistentes
			assert.InDelta(t, result.Totals.Revenue-result.Totals.Cost, result.Totals.Margin, epsilon)

			var revenue, margin float64
			for _, r := range filtered {
				revenue += value(r.Revenue)
				margin += value(r.GrossMargin)
			}
			assert.InDelta(t, revenue, result.Totals.Revenue, epsilon)

			// série mensal particiona o conjunto filtrado
			var monthlyRevenue, monthlyMargin float64
			for i, point := range result.MonthlySeries {
				monthlyRevenue += point.Revenue
				monthlyMargin += point.Margin
				if i > 0 && point.Month != nil {
					assert.True(t, result.MonthlySeries[i-1].Month.Before(*point.Month))
				}
				if point.Month == nil {
					assert.Equal(t, len(result.MonthlySeries)-1, i, "bucket sem data deve ser o último")
				}
				if point.Revenue == 0 {
					assert.Nil(t, point.MarginPct)
				} else {
					require.NotNil(t, point.MarginPct)
					assert.InDelta(t, point.Margin/point.Revenue, *point.MarginPct, epsilon)
				}
			}
			assert.InDelta(t, revenue, monthlyRevenue, epsilon)
			assert.InDelta(t, margin, monthlyMargin, epsilon)

			// linha de produto decrescente
			var lineRevenue float64
			for i, line := range result.ByProductLine {
				lineRevenue += line.Revenue
				if i > 0 {
					assert.GreaterOrEqual(t, result.ByProductLine[i-1].Revenue, line.Revenue)
				}
			}
			assert.InDelta(t, revenue, lineRevenue, epsilon)

			// fornecedor crescente
			var supplierMargin float64
			for i, supplier := range result.BySupplier {
				supplierMargin += supplier.Margin
				if i > 0 {
					assert.LessOrEqual(t, result.BySupplier[i-1].Margin, supplier.Margin)
				}
			}
			assert.InDelta(t, margin, supplierMargin, epsilon)

			var teamRevenue float64
			for _, row := range result.ByTeamRep {
				teamRevenue += row.Revenue
			}
			assert.InDelta(t, revenue, teamRevenue, epsilon)
		})
	}
}

func TestEnrich_MarginPctNullOnlyWhenRevenueZero(t *testing.T) {
	for _, r := range mixed() {
		if r.GrossMargin == nil {
			assert.Nil(t, r.MarginPct)
			continue
		}
		if *r.Revenue == 0 {
			assert.Nil(t, r.MarginPct)
			continue
		}
		require.NotNil(t, r.MarginPct)
		assert.Equal(t, *r.GrossMargin / *r.Revenue, *r.MarginPct)
	}
}

func TestEngine_Aggregate_EmptyResult(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.EnrichedRecord
		filter  domain.FilterSelection
	}{
		{name: "Ano inexistente", records: mixed(), filter: domain.FilterSelection{Year: intPtr(1999)}},
		{name: "Vendedor inexistente", records: mixed(), filter: domain.FilterSelection{Rep: stringPtr("Ninguém")}},
		{name: "Base vazia", records: nil, filter: domain.FilterSelection{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewEngine().Aggregate(tt.records, tt.filter)

			assert.True(t, result.Empty())
			assert.Equal(t, domain.Totals{}, result.Totals)
			assert.NotNil(t, result.MonthlySeries)
			assert.Empty(t, result.MonthlySeries)
			assert.NotNil(t, result.ByProductLine)
			assert.Empty(t, result.ByProductLine)
			assert.NotNil(t, result.BySupplier)
			assert.Empty(t, result.BySupplier)
			assert.NotNil(t, result.ByTeamRep)
			assert.Empty(t, result.ByTeamRep)
		})
	}
}

func TestFilter(t *testing.T) {
	records := mixed()

	tests := []struct {
		name     string
		filter   domain.FilterSelection
		expected int
	}{
		{name: "Sem filtros mantém todos", filter: domain.FilterSelection{}, expected: len(records)},
		{name: "Ano 2024", filter: domain.FilterSelection{Year: intPtr(2024)}, expected: 5},
		{name: "Ano 2023", filter: domain.FilterSelection{Year: intPtr(2023)}, expected: 1},
		{name: "Equipe Norte", filter: domain.FilterSelection{Team: stringPtr("Norte")}, expected: 3},
		{name: "Equipe Norte e ano 2024", filter: domain.FilterSelection{Team: stringPtr("Norte"), Year: intPtr(2024)}, expected: 2},
		{name: "Vendedor sem equipe", filter: domain.FilterSelection{Rep: stringPtr("Felipe")}, expected: 1},
		{name: "Supervisor Eva", filter: domain.FilterSelection{Supervisor: stringPtr("Eva")}, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Filter(records, tt.filter), tt.expected)
		})
	}

	// a base original não é alterada
	assert.Len(t, records, 7)
}

func TestTotals_ZeroRevenue(t *testing.T) {
	records := build(fixture{date: date(2024, 1, 1), qty: floatPtr(1), gross: floatPtr(0), product: p2})

	totals := Totals(records)

	assert.InDelta(t, 0, totals.Revenue, epsilon)
	assert.InDelta(t, 30, totals.Cost, epsilon)
	assert.InDelta(t, -30, totals.Margin, epsilon)
	assert.Equal(t, 0.0, totals.MarginPct)
}

func TestMonthlySeries(t *testing.T) {
	series := MonthlySeries(mixed())

	require.Len(t, series, 5)
	assert.Equal(t, *date(2023, 12, 1), *series[0].Month)
	assert.Equal(t, *date(2024, 1, 1), *series[1].Month)
	assert.Equal(t, *date(2024, 2, 1), *series[2].Month)
	assert.Equal(t, *date(2024, 3, 1), *series[3].Month)
	assert.Nil(t, series[4].Month)

	// janeiro: 1000 (margem 500) + 300 sem produto (margem nula)
	assert.InDelta(t, 1300, series[1].Revenue, epsilon)
	assert.InDelta(t, 500, series[1].Margin, epsilon)
	require.NotNil(t, series[1].MarginPct)
	assert.InDelta(t, 500.0/1300.0, *series[1].MarginPct, epsilon)

	// março: receita zero e receita ausente
	assert.InDelta(t, 0, series[3].Revenue, epsilon)
	assert.InDelta(t, -30, series[3].Margin, epsilon)
	assert.Nil(t, series[3].MarginPct)

	// sem data: 90 - 3
	assert.InDelta(t, 90, series[4].Revenue, epsilon)
	assert.InDelta(t, 87, series[4].Margin, epsilon)
}

func TestByProductLine(t *testing.T) {
	lines := ByProductLine(mixed())

	require.Len(t, lines, 4)
	assert.Equal(t, domain.LineRevenue{Line: "Lentes", Revenue: 1500}, lines[0])
	assert.Equal(t, domain.LineRevenue{Line: domain.UnknownLabel, Revenue: 300}, lines[1])
	assert.Equal(t, domain.LineRevenue{Line: "Armações", Revenue: 100}, lines[2])
	assert.Equal(t, domain.LineRevenue{Line: "Acessórios", Revenue: 90}, lines[3])
}

func TestByProductLine_StableOnTies(t *testing.T) {
	records := build(
		fixture{gross: floatPtr(10), product: p2},
		fixture{gross: floatPtr(10), product: p1},
		fixture{gross: floatPtr(10), product: p3},
	)

	lines := ByProductLine(records)

	require.Len(t, lines, 3)
	assert.Equal(t, "Armações", lines[0].Line)
	assert.Equal(t, "Lentes", lines[1].Line)
	assert.Equal(t, "Acessórios", lines[2].Line)
}

func TestBySupplier(t *testing.T) {
	suppliers := BySupplier(mixed())

	// Beta: (100 - 60) + (0 - 30) + margem nula = 10
	require.Len(t, suppliers, 4)
	assert.Equal(t, domain.SupplierMargin{Supplier: domain.UnknownLabel, Margin: 0}, suppliers[0])
	assert.Equal(t, domain.SupplierMargin{Supplier: "Beta", Margin: 10}, suppliers[1])
	assert.Equal(t, domain.SupplierMargin{Supplier: "Gama", Margin: 87}, suppliers[2])
	assert.Equal(t, domain.SupplierMargin{Supplier: "Acme", Margin: 750}, suppliers[3])
}

func TestByTeamRep(t *testing.T) {
	rows := ByTeamRep(mixed())

	require.Len(t, rows, 4)

	assert.Equal(t, "Norte", rows[0].Team)
	assert.Equal(t, "Bruno", rows[0].Rep)
	assert.InDelta(t, 1090, rows[0].Revenue, epsilon)
	assert.InDelta(t, 587, rows[0].Margin, epsilon)
	require.NotNil(t, rows[0].MarginPct)
	assert.InDelta(t, 587.0/1090.0, *rows[0].MarginPct, epsilon)

	assert.Equal(t, "Carla", rows[1].Rep)

	assert.Equal(t, "Sul", rows[2].Team)
	assert.Equal(t, "Diego", rows[2].Rep)
	assert.InDelta(t, 400, rows[2].Revenue, epsilon)
	assert.InDelta(t, 40, rows[2].Margin, epsilon)

	assert.Equal(t, domain.UnknownLabel, rows[3].Team)
	assert.Equal(t, "Felipe", rows[3].Rep)
	assert.InDelta(t, 0, rows[3].Revenue, epsilon)
	assert.Nil(t, rows[3].MarginPct)
}
