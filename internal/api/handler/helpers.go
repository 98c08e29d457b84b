package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/revenue-dashboard-api/internal/dataset"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Mensagem exibida quando os filtros não retornam registros
const EmptyResultMessage = "Sem dados para a combinação de filtros atual."

// Valores do seletor que representam ausência de filtro
var allValues = map[string]bool{"": true, "todos": true, "todas": true}

// Parâmetros de consulta aceitos pelos endpoints do dashboard
const (
	paramYear       = "ano"
	paramTeam       = "equipe"
	paramSupervisor = "supervisor"
	paramRep        = "vendedor"
)

var errInvalidYear = errors.New("ano inválido")

// parseFilter converte os parâmetros de consulta em FilterSelection
func parseFilter(query url.Values) (domain.FilterSelection, error) {
	var filter domain.FilterSelection

	if year := optionalParam(query, paramYear); year != nil {
		value, err := strconv.Atoi(*year)
		if err != nil || len(*year) != 4 {
			return filter, errInvalidYear
		}
		filter.Year = &value
	}

	filter.Team = optionalParam(query, paramTeam)
	filter.Supervisor = optionalParam(query, paramSupervisor)
	filter.Rep = optionalParam(query, paramRep)

	return filter, nil
}

func optionalParam(query url.Values, key string) *string {
	value := strings.TrimSpace(query.Get(key))
	if allValues[strings.ToLower(value)] {
		return nil
	}
	return &value
}

func filterFields(filter domain.FilterSelection) log.Fields {
	fields := log.Fields{}
	if filter.Year != nil {
		fields["filter_year"] = *filter.Year
	}
	if filter.Team != nil {
		fields["filter_team"] = *filter.Team
	}
	if filter.Supervisor != nil {
		fields["filter_supervisor"] = *filter.Supervisor
	}
	if filter.Rep != nil {
		fields["filter_rep"] = *filter.Rep
	}
	return fields
}

// writeServiceError traduz erros estruturais da base em códigos DATA_*
func writeServiceError(w http.ResponseWriter, logger log.Logger, err error) {
	if loadErr, ok := dataset.AsLoadError(err); ok {
		logger.WithError(err).Error("dashboard: base de dados indisponível")
		apiErrors.WriteError(w, loadErr.Code, "Base de dados do dashboard indisponível", map[string]any{
			"sheet":   loadErr.Sheet,
			"columns": loadErr.Columns,
		})
		return
	}

	logger.WithError(err).Error("dashboard: erro inesperado")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao calcular o dashboard", nil)
}

func writeJSON(w http.ResponseWriter, logger log.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("erro ao codificar resposta")
	}
}
