package components

import (
	"request-desk/internal/handler"
	"request-desk/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewRequestHandler,
		api.NewSystemHandler,
	),
	fx.Invoke(handler.NewRouter),
)
