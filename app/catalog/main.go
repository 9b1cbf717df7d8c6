package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	ipfsapi "github.com/ipfs/go-ipfs-api"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/catalog/base/backoff"
	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/database/redisclient"
	"github.com/x-xyz/catalog/base/goroutine"
	"github.com/x-xyz/catalog/base/log"
	bValidator "github.com/x-xyz/catalog/base/validator"
	"github.com/x-xyz/catalog/domain"
	"github.com/x-xyz/catalog/domain/catalog"
	hcdomain "github.com/x-xyz/catalog/domain/healthcheck"
	"github.com/x-xyz/catalog/domain/keys"
	mmiddleware "github.com/x-xyz/catalog/middleware"
	"github.com/x-xyz/catalog/service/cache"
	"github.com/x-xyz/catalog/service/cache/provider"
	"github.com/x-xyz/catalog/service/cache/provider/compound"
	"github.com/x-xyz/catalog/service/cache/provider/primitive"
	redisprovider "github.com/x-xyz/catalog/service/cache/provider/redis"
	"github.com/x-xyz/catalog/service/chain"
	"github.com/x-xyz/catalog/service/chain/contract"
	"github.com/x-xyz/catalog/service/notify"
	catalog_delivery "github.com/x-xyz/catalog/stores/catalog/delivery/http"
	catalog_repository "github.com/x-xyz/catalog/stores/catalog/repository"
	catalog_usecase "github.com/x-xyz/catalog/stores/catalog/usecase"
	eventlog_repository "github.com/x-xyz/catalog/stores/eventlog/repository"
	hc_delivery "github.com/x-xyz/catalog/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/catalog/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/catalog/stores/healthcheck/usecase"
	metadata_usecase "github.com/x-xyz/catalog/stores/metadata/usecase"
	web_resource_repository "github.com/x-xyz/catalog/stores/web_resource/repository"
	web_resource_usecase "github.com/x-xyz/catalog/stores/web_resource/usecase"
)

var configFile = pflag.String("config", "infra/configs/catalog/config.yaml", "path of the yaml config")

func init() {
	viper.SetDefault("debug", false)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("chain.rpcUrl", "")
	viper.SetDefault("chain.wsUrl", "")
	viper.SetDefault("chain.chainId", 1)
	viper.SetDefault("chain.fromBlock", 0)
	viper.SetDefault("chain.pollInterval", eventlog_repository.DefaultPollInterval)
	viper.SetDefault("chain.timeout", 10*time.Second)
	viper.SetDefault("chain.maxConcurrentCalls", 0)
	viper.SetDefault("contract.marketplace", "")
	viper.SetDefault("contract.simpleMint", "")
	viper.SetDefault("contract.nft", "")
	viper.SetDefault("ipfs.gateway", "https://ipfs.io/ipfs")
	viper.SetDefault("ipfs.nodeApi", "")
	viper.SetDefault("ipfs.timeout", 15*time.Second)
	viper.SetDefault("http.timeout", 10*time.Second)
	viper.SetDefault("cache.sizeMB", 256)
	viper.SetDefault("cache.prefix", keys.RedisKey(keys.PfxCatalog, keys.PfxMetadata))
	viper.SetDefault("redis.uri", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("catalog.concurrency", catalog_usecase.DefaultConcurrency)
	viper.SetDefault("catalog.dateLayout", catalog_usecase.DefaultDateLayout)
	viper.SetDefault("catalog.restartBackoff", time.Second)
	viper.SetDefault("catalog.restartBackoffLimit", time.Minute)
	viper.SetDefault("discord.botKey", "")
	viper.SetDefault("discord.channelId", "")
	viper.SetDefault("discord.dedupeWindow", notify.DefaultDedupeWindow)
	viper.SetDefault("datadog_host", "")
	viper.SetDefault("env_name", "")
	viper.SetDefault("app_name", "catalog")
}

func loadConfig() {
	pflag.Parse()
	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("catalog")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	level := viper.GetString("log.level")
	if viper.GetBool(`debug`) {
		level = "debug"
		log.Log().Info("Service RUN on DEBUG mode")
	}
	if err := log.SetLevel(level); err != nil {
		log.Log().WithFields(log.Fields{"level": level, "err": err}).Panic("log.SetLevel failed")
	}
}

func mustAddress(ctx bCtx.Ctx, key string) common.Address {
	addr := viper.GetString(key)
	if !bValidator.IsValidAddress(addr) {
		ctx.WithFields(log.Fields{"key": key, "address": addr}).Panic("invalid contract address")
	}
	return common.HexToAddress(addr)
}

func main() {
	loadConfig()
	defer log.Sync()

	ctx, cancel := bCtx.WithCancel(bCtx.Background())
	defer cancel()

	httpTimeout := viper.GetDuration("http.timeout")
	ipfsTimeout := viper.GetDuration("ipfs.timeout")
	marketplace := mustAddress(ctx, "contract.marketplace")
	simpleMint := mustAddress(ctx, "contract.simpleMint")
	nft := mustAddress(ctx, "contract.nft")

	ctx.WithFields(log.Fields{
		"chainId":     viper.GetInt64("chain.chainId"),
		"marketplace": marketplace.Hex(),
		"simpleMint":  simpleMint.Hex(),
		"nft":         nft.Hex(),
		"fromBlock":   viper.GetUint64("chain.fromBlock"),
	}).Info("starting catalog")

	chainClient, err := chain.NewClient(ctx, &chain.ClientCfg{
		RpcUrl:             viper.GetString("chain.rpcUrl"),
		WsUrl:              viper.GetString("chain.wsUrl"),
		ChainId:            domain.ChainId(viper.GetInt64("chain.chainId")),
		Timeout:            viper.GetDuration("chain.timeout"),
		MaxConcurrentCalls: viper.GetInt("chain.maxConcurrentCalls"),
	})
	if err != nil {
		ctx.WithField("err", err).Panic("chain.NewClient failed")
	}

	healthRepos := []hcdomain.HealthCheckRepo{hc_repo.NewChainRepo(chainClient.LogClient())}

	// metadata cache, freecache in front of an optional redis
	cacheLayers := []provider.Provider{primitive.NewPrimitive("metadata", viper.GetInt("cache.sizeMB"))}
	if uri := viper.GetString("redis.uri"); uri != "" {
		pool := redisclient.MustConnectRedis(uri, viper.GetString("redis.password"), redisclient.RedisParam{Retry: 3})
		defer pool.Close()
		cacheLayers = append(cacheLayers, redisprovider.NewRedis(pool))
		healthRepos = append(healthRepos, hc_repo.NewRedisRepo(pool))
	}
	metadataCache := cache.New(cache.ServiceConfig{
		Pfx:   viper.GetString("cache.prefix"),
		Cache: compound.NewCompound(cacheLayers),
	})

	httpClient := &http.Client{}
	ipfsReaders := []domain.WebResourceReaderRepository{}
	if nodeApi := viper.GetString("ipfs.nodeApi"); nodeApi != "" {
		ipfsReaders = append(ipfsReaders, web_resource_repository.NewIpfsNodeApiReaderRepo(ipfsapi.NewShell(nodeApi), ipfsTimeout))
	}
	ipfsReaders = append(ipfsReaders, web_resource_repository.NewIpfsGatewayReaderRepo(httpClient, viper.GetString("ipfs.gateway"), ipfsTimeout))
	webResource := web_resource_usecase.NewWebResourceUseCase(&web_resource_usecase.WebResourceUseCaseCfg{
		HttpReader:  web_resource_repository.NewHttpReaderRepo(httpClient, httpTimeout, nil),
		IpfsReaders: ipfsReaders,
	})
	metadata := metadata_usecase.NewMetadataUseCase(&metadata_usecase.MetadataUseCaseCfg{
		WebResource: webResource,
		Cache:       metadataCache,
	})

	notifiers := []catalog.Notifier{notify.NewLogNotifier()}
	var discord *notify.DiscordNotifier
	if botKey := viper.GetString("discord.botKey"); botKey != "" {
		session, err := notify.NewDiscordSession(botKey)
		if err != nil {
			ctx.WithField("err", err).Panic("notify.NewDiscordSession failed")
		}
		discord = notify.NewDiscordNotifier(&notify.DiscordNotifierCfg{
			Sender:       session,
			ChannelId:    viper.GetString("discord.channelId"),
			DedupeWindow: viper.GetDuration("discord.dedupeWindow"),
		})
		notifiers = append(notifiers, discord)
	}

	builder, releaseBuilder := catalog_usecase.NewBuilder(&catalog_usecase.BuilderCfg{
		TokenURIResolver: catalog_repository.NewTokenURIRepo(contract.NewErc721(chainClient, nft)),
		MetadataResolver: metadata,
		Notifier:         notify.NewMultiNotifier(notifiers...),
		Concurrency:      viper.GetInt("catalog.concurrency"),
		DateLayout:       viper.GetString("catalog.dateLayout"),
	})
	defer releaseBuilder()

	source := eventlog_repository.NewChainSource(&eventlog_repository.ChainSourceCfg{
		Client:       chainClient.LogClient(),
		Marketplace:  marketplace,
		SimpleMint:   simpleMint,
		FromBlock:    viper.GetUint64("chain.fromBlock"),
		PollInterval: viper.GetDuration("chain.pollInterval"),
		Timeout:      viper.GetDuration("chain.timeout"),
	})
	pipeline := catalog_usecase.NewPipeline(&catalog_usecase.PipelineCfg{
		Source:  source,
		Builder: builder,
	})

	errCh := make(chan error, 2)
	restart := backoff.NewExponential(viper.GetDuration("catalog.restartBackoff"), viper.GetDuration("catalog.restartBackoffLimit"))
	goroutine.RecoverableGo(func() {
		for {
			started := time.Now()
			err := pipeline.Run(ctx)
			if ctx.Err() != nil {
				return
			}
			if time.Since(started) > restart.Next() {
				restart.Reset()
			}
			ctx.WithFields(log.Fields{
				"err":     err,
				"restart": restart.Count(),
				"wait":    restart.Next(),
			}).Error("pipeline.Run failed, restarting")
			if err := restart.Wait(ctx); err != nil {
				return
			}
		}
	}, goroutine.WithAfterRecovered(func(p interface{}, stack []byte) {
		ctx.WithFields(log.Fields{"panic": p, "stack": string(stack)}).Error("pipeline panic")
		errCh <- domain.ErrInternalServerError
	}))

	// init echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middL.CORS)
	e.Validator = bValidator.NewCustomValidator(validator.New())

	hc_delivery.New(e, hc_usecase.New(healthRepos...))
	catalog_delivery.New(e, pipeline)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			ctx.WithField("err", err).Error("shutting down the server")
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-quit:
		ctx.WithField("signal", sig).Info("received signal")
	case err := <-errCh:
		ctx.WithField("err", err).Error("catalog stopped")
	}
	cancel()

	shutdownCtx, shutdownCancel := bCtx.WithTimeout(bCtx.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		ctx.WithField("err", err).Error("shutting down the server")
	} else {
		ctx.Info("shutdown server successfully")
	}
	if discord != nil {
		if err := discord.Close(shutdownCtx); err != nil {
			ctx.WithField("err", err).Error("discord.Close failed")
		}
	}
}
