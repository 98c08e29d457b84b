package handler

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/revenue-dashboard-api/internal/dataset"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/dashboard/mocks"
	"github.com/vfg2006/revenue-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }
func stringPtr(v string) *string { return &v }

func month(year int, m time.Month) *time.Time {
	d := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return &d
}

func sampleResult() *domain.AggregateResult {
	return &domain.AggregateResult{
		RecordCount: 3,
		Totals:      domain.Totals{Revenue: 1500, Cost: 750, Margin: 750, MarginPct: 0.5},
		MonthlySeries: []domain.MonthlyPoint{
			{Month: month(2024, 1), Revenue: 1000, Margin: 500, MarginPct: floatPtr(0.5)},
			{Month: month(2024, 2), Revenue: 0, Margin: -30},
			{Revenue: 90, Margin: 87, MarginPct: floatPtr(87.0 / 90.0)},
		},
		ByProductLine: []domain.LineRevenue{{Line: "Lentes", Revenue: 1500}},
		BySupplier:    []domain.SupplierMargin{{Supplier: "Acme", Margin: 750}},
		ByTeamRep: []domain.TeamRepPerformance{
			{Team: "Norte", Rep: "Bruno", Revenue: 1234.5, Margin: 462.9375, MarginPct: floatPtr(0.375)},
			{Team: "Sul", Rep: "Diego", Revenue: 2000, Margin: 100, MarginPct: floatPtr(0.05)},
			{Team: domain.UnknownLabel, Rep: "Felipe", Revenue: 0, Margin: -30},
		},
	}
}

func emptyResult() *domain.AggregateResult {
	return &domain.AggregateResult{
		MonthlySeries: []domain.MonthlyPoint{},
		ByProductLine: []domain.LineRevenue{},
		BySupplier:    []domain.SupplierMargin{},
		ByTeamRep:     []domain.TeamRepPerformance{},
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected domain.FilterSelection
		wantErr  bool
	}{
		{name: "Sem parâmetros", query: "", expected: domain.FilterSelection{}},
		{name: "Todos e Todas são ignorados", query: "ano=Todos&equipe=Todas&supervisor=todos&vendedor=TODOS", expected: domain.FilterSelection{}},
		{name: "Todos os filtros", query: "ano=2024&equipe=Norte&supervisor=Ana&vendedor=Bruno", expected: domain.FilterSelection{
			Year:       intPtr(2024),
			Team:       stringPtr("Norte"),
			Supervisor: stringPtr("Ana"),
			Rep:        stringPtr("Bruno"),
		}},
		{name: "Valores com espaços", query: "equipe=+Norte+", expected: domain.FilterSelection{Team: stringPtr("Norte")}},
		{name: "Ano não numérico", query: "ano=abc", wantErr: true},
		{name: "Ano com dois dígitos", query: "ano=24", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			filter, err := parseFilter(query)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter)
		})
	}
}

func TestGetDashboard(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name     string
		query    string
		setup    func(service *mocks.MockDashboardService)
		validate func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:  "Resultado com dados - mantém nulos",
			query: "?ano=2024&equipe=Norte",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().
					GetDashboard(domain.FilterSelection{Year: intPtr(2024), Team: stringPtr("Norte")}).
					Return(sampleResult(), nil)
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, rec.Code)
				body := decode(t, rec)
				assert.Equal(t, false, body["empty"])
				assert.NotContains(t, body, "message")

				series := body["serie_mensal"].([]interface{})
				require.Len(t, series, 3)
				assert.Nil(t, series[1].(map[string]interface{})["margem_pct"])
				assert.Nil(t, series[2].(map[string]interface{})["ano_mes"])

				totals := body["totais"].(map[string]interface{})
				assert.Equal(t, 1500.0, totals["receita"])
			},
		},
		{
			name:  "Resultado vazio - sinaliza sem dados",
			query: "?vendedor=Ninguem",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().GetDashboard(gomock.Any()).Return(emptyResult(), nil)
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, rec.Code)
				body := decode(t, rec)
				assert.Equal(t, true, body["empty"])
				assert.Equal(t, EmptyResultMessage, body["message"])
			},
		},
		{
			name:  "Ano inválido - não consulta o serviço",
			query: "?ano=dois-mil",
			setup: func(service *mocks.MockDashboardService) {},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, apiErrors.ErrInvalidFormat, decode(t, rec)["code"])
			},
		},
		{
			name:  "Aba ausente - erro estrutural",
			query: "",
			setup: func(service *mocks.MockDashboardService) {
				loadErr := &dataset.LoadError{Err: dataset.ErrSheetNotFound, Code: apiErrors.ErrDatasetSheetNotFound, Sheet: "Receita"}
				service.EXPECT().GetDashboard(domain.FilterSelection{}).Return(nil, errors.Wrap(loadErr, "dataset"))
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
				body := decode(t, rec)
				assert.Equal(t, apiErrors.ErrDatasetSheetNotFound, body["code"])
				assert.Equal(t, "Receita", body["details"].(map[string]interface{})["sheet"])
			},
		},
		{
			name:  "Erro inesperado",
			query: "",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().GetDashboard(gomock.Any()).Return(nil, errors.New("falha"))
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusInternalServerError, rec.Code)
				assert.Equal(t, apiErrors.ErrInternalServer, decode(t, rec)["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockDashboardService(ctrl)
			tt.setup(service)

			rec := httptest.NewRecorder()
			GetDashboard(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard"+tt.query, nil))

			tt.validate(t, rec)
		})
	}
}

func TestGetFilterOptions(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboardService(ctrl)
	service.EXPECT().GetFilterOptions().Return(&domain.FilterOptions{
		Years:       []int{2023, 2024},
		Teams:       []string{"Norte", "Sul"},
		Supervisors: []string{"Ana"},
		Reps:        []string{"Bruno"},
	}, nil)

	rec := httptest.NewRecorder()
	GetFilterOptions(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard/filters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{2023.0, 2024.0}, body["anos"])
	assert.Equal(t, []interface{}{"Norte", "Sul"}, body["equipes"])
}

func TestGetCharts(t *testing.T) {
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboardService(ctrl)
	service.EXPECT().GetDashboard(domain.FilterSelection{}).Return(sampleResult(), nil)

	rec := httptest.NewRecorder()
	GetCharts(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard/charts?ano=Todos", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var view ChartsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	assert.False(t, view.Empty)
	require.Len(t, view.KPIs, 4)
	assert.Equal(t, "R$ 1.500,00", view.KPIs[0].Formatted)
	assert.Equal(t, "50 %", view.KPIs[3].Formatted)

	require.Len(t, view.MonthlyMarginPct, 3)
	assert.Equal(t, ChartPoint{Label: "2024-01", Value: 0.5}, view.MonthlyMarginPct[0])
	assert.Equal(t, ChartPoint{Label: "2024-02", Value: 0}, view.MonthlyMarginPct[1])
	assert.Equal(t, domain.UnknownLabel, view.MonthlyMarginPct[2].Label)
	assert.Equal(t, ChartPoint{Label: "2024-01", Value: 1000}, view.MonthlyRevenue[0])

	assert.Equal(t, []ChartPoint{{Label: "Lentes", Value: 1500}}, view.ProductLineShare)
	assert.Equal(t, []ChartPoint{{Label: "Acme", Value: 750}}, view.SupplierMargin)
}

func TestNewChartsView_NonFiniteValues(t *testing.T) {
	nan := math.NaN()
	result := &domain.AggregateResult{
		RecordCount: 1,
		Totals:      domain.Totals{Revenue: nan, Cost: math.Inf(1), Margin: math.Inf(-1), MarginPct: nan},
		MonthlySeries: []domain.MonthlyPoint{
			{Month: month(2024, time.January), Revenue: nan, Margin: nan, MarginPct: &nan},
		},
		ByProductLine: []domain.LineRevenue{{Line: "Lentes", Revenue: nan}},
		BySupplier:    []domain.SupplierMargin{{Supplier: "Acme", Margin: math.Inf(1)}},
		ByTeamRep:     []domain.TeamRepPerformance{{Team: "Norte", Rep: "Ana", Revenue: nan, Margin: nan, MarginPct: &nan}},
	}

	var view ChartsView
	require.NotPanics(t, func() { view = NewChartsView(result) })

	assert.Equal(t, []KPI{
		{Label: "Receita Total", Value: 0, Formatted: "R$ 0,00"},
		{Label: "Custos Totais", Value: 0, Formatted: "R$ 0,00"},
		{Label: "Margem Bruta", Value: 0, Formatted: "R$ 0,00"},
		{Label: "Margem %", Value: 0, Formatted: "0 %"},
	}, view.KPIs)
	assert.Equal(t, []ChartPoint{{Label: "2024-01", Value: 0}}, view.MonthlyRevenue)
	assert.Equal(t, []ChartPoint{{Label: "2024-01", Value: 0}}, view.MonthlyMarginPct)
	assert.Equal(t, []ChartPoint{{Label: "Acme", Value: 0}}, view.SupplierMargin)

	_, err := json.Marshal(view)
	require.NoError(t, err)

	var table TeamPerformanceView
	require.NotPanics(t, func() { table = NewTeamPerformanceView(result, nil) })
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "R$ 0,00", table.Rows[0].RevenueFormatted)
	assert.Equal(t, "0,0 %", table.Rows[0].MarginPctFormatted)

	_, err = json.Marshal(table)
	require.NoError(t, err)
}

func TestNewChartsView_KeepsAggregateNulls(t *testing.T) {
	result := sampleResult()

	NewChartsView(result)

	assert.Nil(t, result.MonthlySeries[1].MarginPct)
}

func TestGetTeamPerformance(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name     string
		query    string
		setup    func(service *mocks.MockDashboardService)
		validate func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:  "Formata moeda e percentual na ordem de aparição",
			query: "",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().GetDashboard(gomock.Any()).Return(sampleResult(), nil)
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, rec.Code)

				var view TeamPerformanceView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
				require.Len(t, view.Rows, 3)

				first := view.Rows[0]
				assert.Equal(t, "Norte", first.Team)
				assert.Equal(t, 1234.5, first.Revenue)
				assert.Equal(t, 462.94, first.Margin)
				assert.Equal(t, "R$ 1.234,50", first.RevenueFormatted)
				assert.Equal(t, "37,5 %", first.MarginPctFormatted)
				require.NotNil(t, first.MarginPct)
				assert.Equal(t, 37.5, *first.MarginPct)

				last := view.Rows[2]
				assert.Nil(t, last.MarginPct)
				assert.Empty(t, last.MarginPctFormatted)
			},
		},
		{
			name:  "Ordena por receita decrescente",
			query: "?ordenar=receita&direcao=desc",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().GetDashboard(gomock.Any()).Return(sampleResult(), nil)
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var view TeamPerformanceView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
				require.Len(t, view.Rows, 3)
				assert.Equal(t, "Diego", view.Rows[0].Rep)
				assert.Equal(t, "Bruno", view.Rows[1].Rep)
				assert.Equal(t, "Felipe", view.Rows[2].Rep)
			},
		},
		{
			name:  "Ordena por margem % com nulos no fim",
			query: "?ordenar=margem_pct&direcao=desc",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().GetDashboard(gomock.Any()).Return(sampleResult(), nil)
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var view TeamPerformanceView
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
				require.Len(t, view.Rows, 3)
				assert.Equal(t, "Bruno", view.Rows[0].Rep)
				assert.Equal(t, "Diego", view.Rows[1].Rep)
				assert.Equal(t, "Felipe", view.Rows[2].Rep)
			},
		},
		{
			name:  "Coluna de ordenação inválida",
			query: "?ordenar=cpf",
			setup: func(service *mocks.MockDashboardService) {},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, apiErrors.ErrInvalidFormat, decode(t, rec)["code"])
			},
		},
		{
			name:  "Sem dados",
			query: "?ano=1999",
			setup: func(service *mocks.MockDashboardService) {
				service.EXPECT().GetDashboard(domain.FilterSelection{Year: intPtr(1999)}).Return(emptyResult(), nil)
			},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := decode(t, rec)
				assert.Equal(t, true, body["empty"])
				assert.Equal(t, EmptyResultMessage, body["message"])
				assert.Empty(t, body["linhas"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockDashboardService(ctrl)
			tt.setup(service)

			rec := httptest.NewRecorder()
			GetTeamPerformance(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard/team-performance"+tt.query, nil))

			tt.validate(t, rec)
		})
	}
}
