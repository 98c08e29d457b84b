package dataset

import (
	"sort"

	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
)

// Join cruza as transações com o cadastro (left join pelo código numérico do produto).
// Códigos duplicados no cadastro multiplicam a transação, um registro por produto encontrado;
// os códigos duplicados são retornados em ordem crescente.
func Join(transactions []domain.TransactionRecord, products []domain.ProductRecord) ([]domain.EnrichedRecord, []int64) {
	byCode := make(map[int64][]*domain.ProductRecord, len(products))
	for i := range products {
		p := &products[i]
		if p.ProductCode == nil {
			continue
		}
		byCode[*p.ProductCode] = append(byCode[*p.ProductCode], p)
	}

	var duplicated []int64
	for code, matches := range byCode {
		if len(matches) > 1 {
			duplicated = append(duplicated, code)
		}
	}
	sort.Slice(duplicated, func(i, j int) bool { return duplicated[i] < duplicated[j] })

	records := make([]domain.EnrichedRecord, 0, len(transactions))
	for _, tx := range transactions {
		var matches []*domain.ProductRecord
		if tx.ProductCode != nil {
			matches = byCode[*tx.ProductCode]
		}

		if len(matches) == 0 {
			records = append(records, domain.Enrich(tx, nil))
			continue
		}

		for _, product := range matches {
			records = append(records, domain.Enrich(tx, product))
		}
	}

	return records, duplicated
}
