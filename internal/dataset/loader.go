// Package dataset carrega a planilha de receita e o cadastro de produtos e monta a base enriquecida
package dataset

import (
	"os"

	"github.com/pkg/errors"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
)

const (
	DefaultFactSheet    = "Receita"
	DefaultProductSheet = "Cadastro de Produtos"
)

// Colunas da aba de receita
const (
	colEmissionDate = "DataEmissao"
	colQuantity     = "QtdItens"
	colGrossValue   = "ValorBruto"
	colFactProduct  = "cdProduto"
	colTeam         = "Equipe Vendas"
	colSupervisor   = "Supervisor"
	colRep          = "Vendedor"
)

// Colunas da aba de cadastro de produtos
const (
	colProductCode = "Cod Produto"
	colGroup       = "Grupo Produto"
	colLine        = "Linha Produto"
	colSupplier    = "Fornecedor"
	colUnitCost    = "CustoUnitario"
)

var (
	factColumns    = []string{colEmissionDate, colQuantity, colGrossValue, colFactProduct, colTeam, colSupervisor, colRep}
	productColumns = []string{colProductCode, colGroup, colLine, colSupplier, colUnitCost}
)

// Loader carrega a base enriquecida a partir de um caminho
//
//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type Loader interface {
	Load(path string) ([]domain.EnrichedRecord, error)
}

type Options struct {
	FactSheet    string
	ProductSheet string
	Open         WorkbookOpener
}

// WorkbookLoader lê as duas abas da planilha, cruza transações com produtos e calcula as métricas
type WorkbookLoader struct {
	factSheet    string
	productSheet string
	open         WorkbookOpener
}

func NewWorkbookLoader(opts Options) *WorkbookLoader {
	if opts.FactSheet == "" {
		opts.FactSheet = DefaultFactSheet
	}
	if opts.ProductSheet == "" {
		opts.ProductSheet = DefaultProductSheet
	}
	if opts.Open == nil {
		opts.Open = OpenExcelWorkbook
	}

	return &WorkbookLoader{
		factSheet:    opts.FactSheet,
		productSheet: opts.ProductSheet,
		open:         opts.Open,
	}
}

func (l *WorkbookLoader) Load(path string) ([]domain.EnrichedRecord, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newFileNotFoundError(path)
		}
		return nil, newUnreadableFileError(path, err)
	}

	wb, err := l.open(path)
	if err != nil {
		return nil, newUnreadableFileError(path, err)
	}
	defer wb.Close()

	available := make(map[string]bool)
	for _, name := range wb.SheetNames() {
		available[name] = true
	}
	for _, sheet := range []string{l.factSheet, l.productSheet} {
		if !available[sheet] {
			return nil, newSheetNotFoundError(path, sheet)
		}
	}

	factRows, err := wb.Rows(l.factSheet)
	if err != nil {
		return nil, newUnreadableFileError(path, err)
	}

	productRows, err := wb.Rows(l.productSheet)
	if err != nil {
		return nil, newUnreadableFileError(path, err)
	}

	transactions, err := l.parseTransactions(path, factRows)
	if err != nil {
		return nil, err
	}

	products, err := l.parseProducts(path, productRows)
	if err != nil {
		return nil, err
	}

	records, duplicated := Join(transactions, products)
	if len(duplicated) > 0 {
		log.L.WithFields(log.Fields{
			"dataset_path":            path,
			"dataset_duplicate_codes": duplicated,
		}).Warn("dataset: cadastro de produtos com códigos duplicados, transações serão multiplicadas no cruzamento")
	}

	stats := Summarize(records)
	stats.Transactions = len(transactions)
	stats.Products = len(products)

	logger := log.L.WithFields(stats.Fields(path))
	if stats.HasQualityIssues() {
		logger.Warn("dataset: base carregada com problemas de qualidade")
	} else {
		logger.Info("dataset: base carregada com sucesso")
	}

	return records, nil
}

func (l *WorkbookLoader) parseTransactions(path string, rows [][]string) ([]domain.TransactionRecord, error) {
	index, missing := headerIndex(rows, factColumns)
	if len(missing) > 0 {
		return nil, newColumnNotFoundError(path, l.factSheet, missing)
	}

	transactions := make([]domain.TransactionRecord, 0, len(rows))
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		transactions = append(transactions, domain.TransactionRecord{
			EmissionDate: ParseDate(cell(row, index[colEmissionDate])),
			Quantity:     ParseNumber(cell(row, index[colQuantity])),
			GrossValue:   ParseNumber(cell(row, index[colGrossValue])),
			ProductCode:  ExtractProductCode(cell(row, index[colFactProduct])),
			Team:         ParseText(cell(row, index[colTeam])),
			Supervisor:   ParseText(cell(row, index[colSupervisor])),
			Rep:          ParseText(cell(row, index[colRep])),
		})
	}

	return transactions, nil
}

func (l *WorkbookLoader) parseProducts(path string, rows [][]string) ([]domain.ProductRecord, error) {
	index, missing := headerIndex(rows, productColumns)
	if len(missing) > 0 {
		return nil, newColumnNotFoundError(path, l.productSheet, missing)
	}

	products := make([]domain.ProductRecord, 0, len(rows))
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		raw := cell(row, index[colProductCode])
		products = append(products, domain.ProductRecord{
			RawCode:     raw,
			ProductCode: ExtractProductCode(raw),
			Group:       ParseText(cell(row, index[colGroup])),
			Line:        ParseText(cell(row, index[colLine])),
			Supplier:    ParseText(cell(row, index[colSupplier])),
			UnitCost:    ParseNumber(cell(row, index[colUnitCost])),
		})
	}

	return products, nil
}

// headerIndex localiza as colunas obrigatórias na primeira linha e lista as ausentes
func headerIndex(rows [][]string, required []string) (map[string]int, []string) {
	index := make(map[string]int, len(required))
	if len(rows) == 0 {
		return index, required
	}

	positions := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		key := normalizeHeader(header)
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	var missing []string
	for _, column := range required {
		pos, ok := positions[normalizeHeader(column)]
		if !ok {
			missing = append(missing, column)
			continue
		}
		index[column] = pos
	}

	return index, missing
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if ParseText(value) != nil {
			return false
		}
	}
	return true
}
