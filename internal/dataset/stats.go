package dataset

import (
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
)

// LoadStats resume a qualidade da base carregada
type LoadStats struct {
	Transactions       int `json:"transacoes"`
	Products           int `json:"produtos"`
	Records            int `json:"registros"`
	MissingProductCode int `json:"sem_codigo_produto"`
	UnmatchedProduct   int `json:"produto_nao_encontrado"`
	InvalidDate        int `json:"data_invalida"`
	MissingRevenue     int `json:"sem_receita"`
	MissingCost        int `json:"sem_custo"`
}

// Summarize conta os registros com campos ausentes
func Summarize(records []domain.EnrichedRecord) LoadStats {
	stats := LoadStats{Records: len(records)}

	for i := range records {
		r := &records[i]
		if r.ProductCode == nil {
			stats.MissingProductCode++
		} else if !r.ProductMatched {
			stats.UnmatchedProduct++
		}
		if r.EmissionDate == nil {
			stats.InvalidDate++
		}
		if r.Revenue == nil {
			stats.MissingRevenue++
		}
		if r.Cost == nil {
			stats.MissingCost++
		}
	}

	return stats
}

// HasQualityIssues indica se algum registro terá campos nulos nas agregações
func (s LoadStats) HasQualityIssues() bool {
	return s.MissingProductCode > 0 || s.UnmatchedProduct > 0 || s.InvalidDate > 0 ||
		s.MissingRevenue > 0 || s.MissingCost > 0
}

func (s LoadStats) Fields(path string) log.Fields {
	return log.Fields{
		"dataset_path":                 path,
		"dataset_transactions":         s.Transactions,
		"dataset_products":             s.Products,
		"dataset_records":              s.Records,
		"dataset_missing_product_code": s.MissingProductCode,
		"dataset_unmatched_product":    s.UnmatchedProduct,
		"dataset_invalid_date":         s.InvalidDate,
		"dataset_missing_revenue":      s.MissingRevenue,
		"dataset_missing_cost":         s.MissingCost,
	}
}
