package handlers

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(
		NewDocument,
		NewPhoneHandler,
		NewProfileHandler,
		NewAuthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
