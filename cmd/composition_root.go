package cmd

import (
	"log/slog"
	"time"

	"consolidation/internal/adapters/in/http"
	"consolidation/internal/adapters/out/postgres"
	"consolidation/internal/adapters/out/postgres/productcatalog"
	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/application/usecases/queries"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/services"
	"consolidation/internal/jobs"
	"consolidation/internal/pkg/locks"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services and use case handlers.
// Per-locality locks and the unit of work factory are shared across all
// handlers so every writer contends on the same guard.
type CompositionRoot struct {
	configs       Config
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	localityLocks *locks.KeyedMutex
	clock         systemClock
	catalog       *productcatalog.Catalog
	policy        services.Policy
}

// NewCompositionRoot builds the object graph from configuration and an open
// database connection. Fails if the configured fit policy is unknown.
func NewCompositionRoot(configs Config, gormDB *gorm.DB) (CompositionRoot, error) {
	policy, err := services.ParsePolicy(configs.FitPolicy)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		configs:       configs,
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		localityLocks: locks.NewKeyedMutex(),
		clock:         systemClock{},
		catalog:       productcatalog.NewCatalog(gormDB),
		policy:        policy,
	}, nil
}

func (c *CompositionRoot) assignmentPolicy() batch.AssignmentPolicy {
	return batch.AssignmentPolicy{
		CutoffHour:   c.configs.CutoffHour,
		MinFillRatio: c.configs.MinFillRatio,
		Deadline:     c.configs.AssignmentDeadline,
	}
}

func (c *CompositionRoot) capacityCeiling() kernel.Weight {
	return kernel.NewWeight(decimal.NewFromFloat(c.configs.CapacityCeiling))
}

func (c *CompositionRoot) CreateApproveOrderCommandHandler() commands.ApproveOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewApproveOrderCommandHandler(
		f,
		services.NewWeightResolver(c.catalog),
		services.NewAllocator(c.policy),
		c.localityLocks,
		c.clock,
		c.capacityCeiling(),
		c.configs.LockTimeout,
		c.configs.AllocationMaxRetries,
	)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRejectOrderCommandHandler(f, c.localityLocks, c.configs.LockTimeout)
}

func (c *CompositionRoot) CreateReplaceLineItemsCommandHandler() commands.ReplaceLineItemsCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReplaceLineItemsCommandHandler(f)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignDriverCommandHandler(
		f,
		c.localityLocks,
		c.clock,
		c.assignmentPolicy(),
		c.configs.LockTimeout,
	)
}

func (c *CompositionRoot) CreateStartDeliveryCommandHandler() commands.StartDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartDeliveryCommandHandler(f)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteDeliveryCommandHandler(f)
}

func (c *CompositionRoot) CreateResyncLocalityCommandHandler() commands.ResyncLocalityCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewResyncLocalityCommandHandler(f, c.localityLocks, c.configs.LockTimeout)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBatchQueryHandler() queries.GetBatchQueryHandler {
	return queries.NewGetBatchQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOpenBatchesQueryHandler() queries.GetOpenBatchesQueryHandler {
	return queries.NewGetOpenBatchesQueryHandler(c.gormDB)
}

// CreateServer assembles the HTTP server over all handlers.
func (c *CompositionRoot) CreateServer() *http.Server {
	return http.NewServer(
		c.CreateApproveOrderCommandHandler(),
		c.CreateRejectOrderCommandHandler(),
		c.CreateReplaceLineItemsCommandHandler(),
		c.CreateAssignDriverCommandHandler(),
		c.CreateStartDeliveryCommandHandler(),
		c.CreateCompleteDeliveryCommandHandler(),
		c.CreateResyncLocalityCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetBatchQueryHandler(),
		c.CreateGetOpenBatchesQueryHandler(),
		c.catalog,
	)
}

// CreateJobManager assembles the background jobs.
func (c *CompositionRoot) CreateJobManager(logger *slog.Logger) *jobs.JobManager {
	return jobs.NewJobManager(
		&c.uowFactory,
		c.CreateResyncLocalityCommandHandler(),
		c.clock,
		c.configs.AssignmentDeadline,
		logger,
	)
}

// systemClock is the production wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
