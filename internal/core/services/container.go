package services

import (
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
)

// ServiceProvider bundles the concrete services handed to the handlers.
type ServiceProvider struct {
	CatalogSvc portssvc.CatalogSvcFacade
	LedgerSvc  portssvc.LedgerSvcFacade
	SeedSvc    portssvc.SeedSvcFacade
}

// NewServiceProvider wires the services over the repository provider.
func NewServiceProvider(repos *portsrepo.RepositoryProvider, cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{
		CatalogSvc: NewCatalogService(repos.AccountRepo, repos.LedgerRepo),
		LedgerSvc:  NewLedgerService(repos.AccountRepo, repos.LedgerRepo),
		SeedSvc:    NewSeedService(repos.MasterRepo, repos.DepartmentRepo, cfg.MasterDataDir),
	}
}
