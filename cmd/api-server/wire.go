//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"Forge/config"
	"Forge/dao"
	"Forge/handler"
	"Forge/pkg/client"
	"Forge/pkg/database"
	"Forge/pkg/server"
	"Forge/service"
	"Forge/socket"
)

func InitServer(cfg *config.Config) (*server.AppProvider, func(), error) {
	wire.Build(
		database.NewDB,
		client.NewRedisClient,
		config.ProvideGatewayConfig,
		config.ProvideOssConfig,
		config.ProvideUploadConfig,
		config.ProvideRocketMQConfig,

		dao.ProviderSet,
		service.ProviderSet,
		socket.NewHub,

		wire.Struct(new(handler.ContentHandler), "*"),
		wire.Struct(new(handler.CommentsHandler), "*"),
		wire.Struct(new(handler.SearchHandler), "*"),
		wire.Struct(new(handler.ProfileHandler), "*"),
		wire.Struct(new(handler.UploadHandler), "*"),
		wire.Struct(new(handler.LiveHandler), "*"),

		wire.Struct(new(server.Handlers), "*"),
		server.NewGinEngine,
		wire.Struct(new(server.AppProvider), "*"),
	)
	return nil, nil, nil
}
