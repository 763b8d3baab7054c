package services

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/db"
)

// Services holds all the service instances.
type Services struct {
	Allocations *AllocationService
	Instances   *InstanceService
	Catalog     *CatalogService
}

// NewServices wires the services against one transaction runner and one
// pool-bound read store bundle.
func NewServices(runner db.TxRunner, pool db.Querier, defaultLimit int, avgHourlyRate decimal.Decimal, logger zerolog.Logger) *Services {
	reads := RepositoryStores(pool)
	return &Services{
		Allocations: NewAllocationService(runner, RepositoryStores, reads, defaultLimit, logger),
		Instances:   NewInstanceService(runner, RepositoryStores, reads, avgHourlyRate, logger),
		Catalog:     NewCatalogService(runner, RepositoryStores, reads, logger),
	}
}
