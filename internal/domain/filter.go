package domain

// FilterSelection representa os filtros do dashboard. Campo nil significa "Todos".
type FilterSelection struct {
	Year       *int    `json:"ano,omitempty"`
	Team       *string `json:"equipe,omitempty"`
	Supervisor *string `json:"supervisor,omitempty"`
	Rep        *string `json:"vendedor,omitempty"`
}

// Matches verifica se o registro atende a todos os filtros informados
func (f FilterSelection) Matches(r *EnrichedRecord) bool {
	if f.Year != nil && (r.Year == nil || *r.Year != *f.Year) {
		return false
	}
	if !matchString(f.Team, r.Team) {
		return false
	}
	if !matchString(f.Supervisor, r.Supervisor) {
		return false
	}
	return matchString(f.Rep, r.Rep)
}

func matchString(want, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

// FilterOptions representa os valores distintos disponíveis para cada filtro
type FilterOptions struct {
	Years       []int    `json:"anos"`
	Teams       []string `json:"equipes"`
	Supervisors []string `json:"supervisores"`
	Reps        []string `json:"vendedores"`
}
