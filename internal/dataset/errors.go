package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vfg2006/revenue-dashboard-api/pkg/apiErrors"
)

// Erros estruturais de carga. Problemas de qualidade por linha nunca viram erro.
var (
	ErrFileNotFound   = errors.New("arquivo da base não encontrado")
	ErrUnreadableFile = errors.New("não foi possível ler a planilha")
	ErrSheetNotFound  = errors.New("aba obrigatória ausente")
	ErrColumnNotFound = errors.New("coluna obrigatória ausente")
)

// LoadError é um erro estrutural com o contexto da planilha envolvida
type LoadError struct {
	Err     error    // Erro base
	Code    string   // Código de erro para API
	Path    string   // Caminho da planilha
	Sheet   string   // Aba envolvida (quando aplicável)
	Columns []string // Colunas ausentes (quando aplicável)
	Details string   // Detalhes adicionais
}

// Error implementa a interface error
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Sheet != "" {
		fmt.Fprintf(&b, ": aba %q", e.Sheet)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": colunas %s", strings.Join(e.Columns, ", "))
	}
	if e.Details != "" {
		fmt.Fprintf(&b, ": %s", e.Details)
	}
	fmt.Fprintf(&b, " (%s)", e.Path)
	return b.String()
}

// Unwrap retorna o erro subjacente
func (e *LoadError) Unwrap() error {
	return e.Err
}

func newFileNotFoundError(path string) *LoadError {
	return &LoadError{Err: ErrFileNotFound, Code: apiErrors.ErrDatasetFileNotFound, Path: path}
}

func newUnreadableFileError(path string, cause error) *LoadError {
	return &LoadError{Err: ErrUnreadableFile, Code: apiErrors.ErrDatasetUnreadable, Path: path, Details: cause.Error()}
}

func newSheetNotFoundError(path, sheet string) *LoadError {
	return &LoadError{Err: ErrSheetNotFound, Code: apiErrors.ErrDatasetSheetNotFound, Path: path, Sheet: sheet}
}

func newColumnNotFoundError(path, sheet string, columns []string) *LoadError {
	return &LoadError{Err: ErrColumnNotFound, Code: apiErrors.ErrDatasetColumnNotFound, Path: path, Sheet: sheet, Columns: columns}
}

// AsLoadError extrai o erro estrutural da carga, quando houver
func AsLoadError(err error) (*LoadError, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr, true
	}
	return nil, false
}
