package dataset

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Cache memoriza a base carregada por caminho durante a vida do processo.
// Cada caminho é carregado uma única vez; só resultados completos são publicados e erros não
// ficam em cache. Não há invalidação: a planilha é tratada como estática.
type Cache struct {
	loader  Loader
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string][]domain.EnrichedRecord
}

func NewCache(loader Loader) *Cache {
	return &Cache{
		loader:  loader,
		entries: make(map[string][]domain.EnrichedRecord),
	}
}

// Load retorna a base em cache ou carrega a planilha. O slice retornado é compartilhado e
// não deve ser alterado.
func (c *Cache) Load(path string) ([]domain.EnrichedRecord, error) {
	key := cacheKey(path)

	if records, ok := c.lookup(key); ok {
		return records, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		if records, ok := c.lookup(key); ok {
			return records, nil
		}

		log.L.WithField("dataset_path", path).Info("dataset: carregando planilha")

		records, err := c.loader.Load(path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = records
		c.mu.Unlock()

		return records, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: falha ao carregar %s", path)
	}

	return value.([]domain.EnrichedRecord), nil
}

func (c *Cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) ([]domain.EnrichedRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	records, ok := c.entries[key]
	return records, ok
}

func cacheKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
