package service

import (
	"github.com/google/wire"

	"Forge/dao"
	"Forge/pkg/oss"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(ContentService), "*"),
	wire.Bind(new(IContentService), new(*ContentService)),

	wire.Struct(new(SearchService), "*"),
	wire.Bind(new(ISearchService), new(*SearchService)),

	wire.Struct(new(ProfileService), "*"),
	wire.Bind(new(IProfileService), new(*ProfileService)),

	oss.NewStore,
	wire.Bind(new(ObjectStore), new(*oss.Store)),
	wire.Bind(new(ImageRecorder), new(*dao.Image)),
	wire.Struct(new(OssService), "*"),
	wire.Bind(new(IOssService), new(*OssService)),

	NewActivityPublisher,
)
