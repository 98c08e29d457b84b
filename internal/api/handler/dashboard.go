package handler

import (
	"net/http"

	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/revenue-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
)

// DashboardResponse expõe o resultado bruto da agregação, preservando nulos
type DashboardResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	*domain.AggregateResult
}

func GetDashboard(service dashboard.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, logger, ok := aggregate(w, r, service)
		if !ok {
			return
		}

		response := DashboardResponse{AggregateResult: result}
		if result.Empty() {
			response.Empty = true
			response.Message = EmptyResultMessage
		}

		writeJSON(w, logger, response)
	}
}

func GetFilterOptions(service dashboard.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		options, err := service.GetFilterOptions()
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, options)
	}
}

func GetCharts(service dashboard.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, logger, ok := aggregate(w, r, service)
		if !ok {
			return
		}

		writeJSON(w, logger, NewChartsView(result))
	}
}

func GetTeamPerformance(service dashboard.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy, err := parseTeamSort(r.URL.Query())
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		result, logger, ok := aggregate(w, r, service)
		if !ok {
			return
		}

		writeJSON(w, logger, NewTeamPerformanceView(result, sortBy))
	}
}

// aggregate lê os filtros da requisição e calcula o resultado. Em caso de erro a resposta já foi escrita.
func aggregate(w http.ResponseWriter, r *http.Request, service dashboard.DashboardService) (*domain.AggregateResult, log.Logger, bool) {
	logger := log.ForContext(r.Context())

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro 'ano' deve ser um ano com quatro dígitos", nil)
		return nil, logger, false
	}

	logger = logger.WithFields(filterFields(filter))

	result, err := service.GetDashboard(filter)
	if err != nil {
		writeServiceError(w, logger, err)
		return nil, logger, false
	}

	logger.WithField("result_records", result.RecordCount).Debug("dashboard calculado")

	return result, logger, true
}
