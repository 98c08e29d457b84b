package dataset

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Workbook abstrai a leitura das abas da planilha
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
	Close() error
}

// WorkbookOpener abre a planilha localizada em path
type WorkbookOpener func(path string) (Workbook, error)

type excelWorkbook struct {
	file *excelize.File
}

// OpenExcelWorkbook abre um arquivo .xlsx com excelize
func OpenExcelWorkbook(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "excelize")
	}
	return &excelWorkbook{file: f}, nil
}

func (w *excelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows retorna os valores brutos das células: datas chegam como número serial do Excel
func (w *excelWorkbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler aba %s", sheet)
	}
	return rows, nil
}

func (w *excelWorkbook) Close() error {
	return w.file.Close()
}
