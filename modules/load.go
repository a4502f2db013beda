package modules

import (
	"github.com/oliver-kandagor/catalog-admin/modules/catalog"
	"github.com/oliver-kandagor/catalog-admin/pkg/application"
)

var BuiltInModules = []application.Module{
	catalog.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
