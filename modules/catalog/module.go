package catalog

import (
	"embed"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/infrastructure/notification"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/infrastructure/persistence"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/presentation/controllers"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/services"
	"github.com/oliver-kandagor/catalog-admin/pkg/application"
)

//go:embed presentation/locales/*.json
var localeFiles embed.FS

//go:embed infrastructure/persistence/schema/catalog-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.RegisterLocaleFiles(&localeFiles)
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewModerationService(
			persistence.NewChangeRequestRepository(),
			persistence.NewCatalogStore(),
			services.NewAuditRecorder(persistence.NewDecisionAuditRepository()),
			notification.NewEventBusNotifier(app.EventPublisher(), app.Bundle()),
			app.EventPublisher(),
		),
	)

	app.RegisterControllers(
		controllers.NewRequestsController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "catalog"
}
