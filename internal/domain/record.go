// Package domain contém as estruturas de dados do domínio do dashboard de receita
package domain

import "time"

// TransactionRecord representa uma linha da planilha de receita (fato)
type TransactionRecord struct {
	EmissionDate *time.Time
	Quantity     *float64
	GrossValue   *float64
	ProductCode  *int64
	Team         *string
	Supervisor   *string
	Rep          *string
}

// ProductRecord representa uma linha do cadastro de produtos (dimensão)
type ProductRecord struct {
	RawCode     string
	ProductCode *int64 // Primeira sequência de dígitos de RawCode
	Group       *string
	Line        *string
	Supplier    *string
	UnitCost    *float64
}

// EnrichedRecord é uma transação já cruzada com o cadastro de produtos e com as métricas derivadas.
// Campos nil representam valores ausentes e nunca são tratados como zero.
type EnrichedRecord struct {
	TransactionRecord

	Year      *int
	Month     *int
	YearMonth *time.Time // Primeiro dia do mês da emissão

	ProductMatched bool // Encontrou produto no cadastro
	ProductGroup   *string
	ProductLine    *string
	Supplier       *string
	UnitCost       *float64

	Cost        *float64
	Revenue     *float64
	GrossMargin *float64
	MarginPct   *float64
}

// Enrich calcula os campos derivados a partir da transação e do produto (quando houver)
func Enrich(tx TransactionRecord, product *ProductRecord) EnrichedRecord {
	record := EnrichedRecord{TransactionRecord: tx}

	if tx.EmissionDate != nil {
		d := *tx.EmissionDate
		year, month := d.Year(), int(d.Month())
		bucket := time.Date(year, d.Month(), 1, 0, 0, 0, 0, time.UTC)
		record.Year = &year
		record.Month = &month
		record.YearMonth = &bucket
	}

	if product != nil {
		record.ProductMatched = true
		record.ProductGroup = product.Group
		record.ProductLine = product.Line
		record.Supplier = product.Supplier
		record.UnitCost = product.UnitCost
	}

	if tx.Quantity != nil && record.UnitCost != nil {
		cost := *tx.Quantity * *record.UnitCost
		record.Cost = &cost
	}

	if tx.GrossValue != nil {
		revenue := *tx.GrossValue
		record.Revenue = &revenue
	}

	if record.Revenue != nil && record.Cost != nil {
		margin := *record.Revenue - *record.Cost
		record.GrossMargin = &margin
	}

	record.MarginPct = Ratio(record.GrossMargin, record.Revenue)

	return record
}

// Ratio divide numerador por denominador, retornando nil quando algum lado é nil ou o denominador é zero
func Ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}

	value := *numerator / *denominator
	return &value
}
