package service

import (
	"go.uber.org/zap"

	"soundbed/config"
	"soundbed/internal/asset"
	"soundbed/internal/assembler"
	"soundbed/internal/synth"
	"soundbed/internal/timeline"
	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/openai"
)

type Service struct {
	Transcriber   types.Transcriber
	ChatCompleter types.ChatCompleter
	AssetLibrary  types.AssetLibrary

	Synthesizer *synth.Synthesizer
	Composer    *timeline.Composer
	Assembler   *assembler.Assembler

	// Dispatcher routes accepted tasks to an execution backend; nil means
	// run in a goroutine of the calling process.
	Dispatcher TaskDispatcher
}

func NewService() *Service {
	var transcriber types.Transcriber

	switch config.Conf.Transcribe.Provider {
	case "openai":
		transcriber = openai.NewClient(config.Conf.Transcribe.Openai.BaseUrl, config.Conf.Transcribe.Openai.ApiKey, config.Conf.App.Proxy)
	default:
		log.GetLogger().Error("unknown transcribe provider", zap.String("provider", config.Conf.Transcribe.Provider))
		return nil
	}
	log.GetLogger().Info("selected transcribe provider", zap.String("provider", config.Conf.Transcribe.Provider))

	chatCompleter := openai.NewClient(config.Conf.Llm.BaseUrl, config.Conf.Llm.ApiKey, config.Conf.App.Proxy)

	library := asset.NewLibrary(asset.Config{
		Provider:        config.Conf.Assets.Provider,
		LocalDir:        config.Conf.Assets.LocalDir,
		AccessKeyId:     config.Conf.Assets.Oss.AccessKeyId,
		AccessKeySecret: config.Conf.Assets.Oss.AccessKeySecret,
		Bucket:          config.Conf.Assets.Oss.Bucket,
		Region:          config.Conf.Assets.Oss.Region,
		Prefix:          config.Conf.Assets.Oss.Prefix,
	})
	if library.Available() {
		log.GetLogger().Info("asset library enabled", zap.String("provider", config.Conf.Assets.Provider))
	} else {
		log.GetLogger().Info("asset library unavailable, all clips will be generated procedurally")
	}

	return &Service{
		Transcriber:   transcriber,
		ChatCompleter: chatCompleter,
		AssetLibrary:  library,
		Synthesizer:   synth.NewSynthesizer(library, config.Conf.App.TempDir, config.Conf.App.Seed),
		Composer:      timeline.NewComposer(config.Conf.Bgm.Crossfade),
		Assembler:     assembler.NewAssembler(config.Conf.Bgm.Resolution),
	}
}
