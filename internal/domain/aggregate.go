package domain

import "time"

// UnknownLabel agrupa registros cujo campo de agrupamento está ausente
const UnknownLabel = "Desconhecido"

// Totals representa os KPIs do período filtrado
type Totals struct {
	Revenue   float64 `json:"receita"`
	Cost      float64 `json:"custos"`
	Margin    float64 `json:"margem_bruta"`
	MarginPct float64 `json:"margem_pct"` // 0 quando a receita é zero
}

// MonthlyPoint representa um mês da série mensal. Month nil agrupa datas inválidas.
type MonthlyPoint struct {
	Month     *time.Time `json:"ano_mes"`
	Revenue   float64    `json:"receita"`
	Margin    float64    `json:"margem_bruta"`
	MarginPct *float64   `json:"margem_pct"`
}

// LineRevenue representa a receita de uma linha de produto
type LineRevenue struct {
	Line    string  `json:"linha_produto"`
	Revenue float64 `json:"receita"`
}

// SupplierMargin representa a margem bruta de um fornecedor
type SupplierMargin struct {
	Supplier string  `json:"fornecedor"`
	Margin   float64 `json:"margem_bruta"`
}

// TeamRepPerformance representa o desempenho de um vendedor dentro de uma equipe
type TeamRepPerformance struct {
	Team      string   `json:"equipe"`
	Rep       string   `json:"vendedor"`
	Revenue   float64  `json:"receita"`
	Margin    float64  `json:"margem_bruta"`
	MarginPct *float64 `json:"margem_pct"`
}

// AggregateResult reúne as cinco visões calculadas sobre o conjunto filtrado
type AggregateResult struct {
	Filters       FilterSelection      `json:"filtros"`
	RecordCount   int                  `json:"registros"`
	Totals        Totals               `json:"totais"`
	MonthlySeries []MonthlyPoint       `json:"serie_mensal"`
	ByProductLine []LineRevenue        `json:"por_linha_produto"`
	BySupplier    []SupplierMargin     `json:"por_fornecedor"`
	ByTeamRep     []TeamRepPerformance `json:"por_equipe_vendedor"`
}

// Empty indica que nenhum registro passou pelos filtros
func (r *AggregateResult) Empty() bool {
	return r == nil || r.RecordCount == 0
}
