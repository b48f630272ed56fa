package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/posekit/internal/config"
	"github.com/zeusync/posekit/internal/core/events/bus"
	"github.com/zeusync/posekit/internal/core/keyframe"
	"github.com/zeusync/posekit/internal/core/loader"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"github.com/zeusync/posekit/internal/core/playback"
	"github.com/zeusync/posekit/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	keyframe.NewAlgorithmRegistry,
	keyframe.NewEasingRegistry,
	playback.NewRegistry,
	ProvideParser,
	ProvideLoader,
	ProvideServer,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(log.ParseLevel(cfg.LogLevel))
}

func ProvideParser(algorithms *keyframe.AlgorithmRegistry, easings *keyframe.EasingRegistry, logger *log.Logger) *loader.Parser {
	return loader.NewParser(algorithms, easings, logger.Named("codec"))
}

func ProvideLoader(cfg config.Config, parser *loader.Parser, logger *log.Logger, b bus.EventBus) *loader.Loader {
	source := loader.NewDirSource(cfg.Clips.Root, cfg.Clips.Prefix, cfg.Clips.Extensions...)
	return loader.New(source, parser,
		loader.WithWorkers(cfg.Clips.Workers),
		loader.WithLogger(logger.Named("loader")),
		loader.WithBus(b),
	)
}

func ProvideServer(cfg config.Config, logger *log.Logger, l *loader.Loader, registry *playback.Registry, b bus.EventBus) *server.Server {
	return server.NewServer(cfg, logger, l, registry, b)
}
