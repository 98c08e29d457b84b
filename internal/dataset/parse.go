package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// Apenas dígitos, separadores, sinal e expoente; recusa "NaN", "Inf" e hexadecimais
var numberPattern = regexp.MustCompile(`^[+-]?[0-9.,]+([eE][+-]?[0-9]+)?$`)

var serialPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Ano isolado ("2024") não é uma data
var yearOnlyPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Faixa de seriais válidos no Excel: 1900-01-01 a 9999-12-31
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Formatos textuais aceitos para DataEmissao, além do número serial do Excel
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"01-02-06",
}

// ExtractProductCode extrai o código numérico da primeira sequência de dígitos ("Prod 2096" -> 2096)
func ExtractProductCode(raw string) *int64 {
	digits := digitsPattern.FindString(raw)
	if digits == "" {
		return nil
	}

	code, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}

	return &code
}

// ParseDate converte o valor da célula em data (sem fuso), retornando nil quando inválido
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if yearOnlyPattern.MatchString(raw) {
		return nil
	}

	if serialPattern.MatchString(raw) {
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil || serial < minExcelSerial || serial > maxExcelSerial {
			return nil
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		return normalizeDate(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return normalizeDate(t)
		}
	}

	return nil
}

func normalizeDate(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return &d
}

// ParseNumber converte valores numéricos nos formatos "1234.5", "1.234,50" e "R$ 1.234,50"
func ParseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if !numberPattern.MatchString(s) {
		return nil
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	return &value
}

// ParseText remove espaços e retorna nil para células vazias
func ParseText(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// normalizeHeader padroniza o cabeçalho para comparação ("  Equipe   Vendas" -> "equipe vendas")
func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
