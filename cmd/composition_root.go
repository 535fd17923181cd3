package cmd

import (
	"log/slog"

	inhttp "kds/internal/adapters/in/http"
	inrabbit "kds/internal/adapters/in/rabbit"
	"kds/internal/adapters/out/postgres"
	"kds/internal/adapters/out/postgres/auditrepo"
	"kds/internal/adapters/out/rabbit"
	"kds/internal/core/application/usecases/commands"
	"kds/internal/core/application/usecases/queries"
	"kds/internal/core/ports"
	"kds/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	rabbitConn *rabbit.Connection
	logger     *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, rabbitConn *rabbit.Connection, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		configs:    configs,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		rabbitConn: rabbitConn,
		logger:     logger,
	}
}

func (c *CompositionRoot) CreateAuditPublisher() ports.AuditPublisher {
	return rabbit.NewAuditQueuePublisher(c.rabbitConn)
}

func (c *CompositionRoot) CreateRecordTransitionCommandHandler() commands.RecordTransitionCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordTransitionCommandHandler(f, c.CreateAuditPublisher(), c.logger)
}

func (c *CompositionRoot) CreateReconcileStatusesCommandHandler() commands.ReconcileStatusesCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewReconcileStatusesCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateGetActiveQueueQueryHandler() queries.GetActiveQueueQueryHandler {
	return queries.NewGetActiveQueueQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPerformanceQueryHandler() queries.GetPerformanceQueryHandler {
	return queries.NewGetPerformanceQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTimelineQueryHandler() queries.GetTimelineQueryHandler {
	return queries.NewGetTimelineQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *inhttp.Server {
	recordTransitionHandler := c.CreateRecordTransitionCommandHandler()

	return inhttp.NewServer(
		&recordTransitionHandler,
		c.CreateGetActiveQueueQueryHandler(),
		c.CreateGetPerformanceQueryHandler(),
		c.CreateGetTimelineQueryHandler(),
	)
}

func (c *CompositionRoot) CreateAuditWorker() *inrabbit.AuditWorker {
	return inrabbit.NewAuditWorker(
		c.rabbitConn,
		auditrepo.NewGormAuditRepository(c.gormDB),
		c.logger,
		c.configs.AuditWorkerConcurrency,
		c.configs.AuditJobTimeout,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateReconcileStatusesCommandHandler(),
		c.configs.ReconcileSchedule,
		c.logger,
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
