package dao

import (
	"Forge/gateway"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewChangeFeed,
	NewGateway,
	wire.Bind(new(gateway.Gateway), new(*Gateway)),
	NewImage,
	NewProfile,
)
