// Package dashboard combina a base em cache com o motor de agregação para a camada de apresentação
package dashboard

import (
	"sort"

	"github.com/vfg2006/revenue-dashboard-api/internal/config"
	"github.com/vfg2006/revenue-dashboard-api/internal/dataset"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/aggregating"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks
type DashboardService interface {
	// GetDashboard retorna as cinco visões do dashboard para os filtros informados
	GetDashboard(filter domain.FilterSelection) (*domain.AggregateResult, error)

	// GetFilterOptions retorna os valores distintos de ano, equipe, supervisor e vendedor
	GetFilterOptions() (*domain.FilterOptions, error)

	// Warmup carrega a base antes do servidor aceitar requisições
	Warmup() (*dataset.LoadStats, error)
}

type Service struct {
	path       string
	loader     dataset.Loader
	aggregator aggregating.Aggregator
}

func NewService(cfg *config.Config, loader dataset.Loader, aggregator aggregating.Aggregator) DashboardService {
	return &Service{
		path:       cfg.Dataset.Path,
		loader:     loader,
		aggregator: aggregator,
	}
}

func (s *Service) GetDashboard(filter domain.FilterSelection) (*domain.AggregateResult, error) {
	records, err := s.loader.Load(s.path)
	if err != nil {
		return nil, err
	}

	return s.aggregator.Aggregate(records, filter), nil
}

func (s *Service) GetFilterOptions() (*domain.FilterOptions, error) {
	records, err := s.loader.Load(s.path)
	if err != nil {
		return nil, err
	}

	return BuildFilterOptions(records), nil
}

func (s *Service) Warmup() (*dataset.LoadStats, error) {
	records, err := s.loader.Load(s.path)
	if err != nil {
		return nil, err
	}

	stats := dataset.Summarize(records)
	return &stats, nil
}

// BuildFilterOptions lista os valores distintos (sem nulos) em ordem crescente
func BuildFilterOptions(records []domain.EnrichedRecord) *domain.FilterOptions {
	years := make(map[int]struct{})
	teams := make(map[string]struct{})
	supervisors := make(map[string]struct{})
	reps := make(map[string]struct{})

	for i := range records {
		r := &records[i]
		if r.Year != nil {
			years[*r.Year] = struct{}{}
		}
		addString(teams, r.Team)
		addString(supervisors, r.Supervisor)
		addString(reps, r.Rep)
	}

	options := &domain.FilterOptions{
		Years:       make([]int, 0, len(years)),
		Teams:       sortedKeys(teams),
		Supervisors: sortedKeys(supervisors),
		Reps:        sortedKeys(reps),
	}
	for year := range years {
		options.Years = append(options.Years, year)
	}
	sort.Ints(options.Years)

	return options
}

func addString(set map[string]struct{}, value *string) {
	if value != nil {
		set[*value] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
