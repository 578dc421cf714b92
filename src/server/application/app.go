package application

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/gateway"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/model"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/stager"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/usecase"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/writer"
	"github.com/veedubyou/stem-separator/src/shared/cloud_storage/store"
	"github.com/veedubyou/stem-separator/src/shared/config"
	"github.com/veedubyou/stem-separator/src/shared/lib/executor"
	"github.com/veedubyou/stem-separator/src/shared/lib/metrics"
	"github.com/veedubyou/stem-separator/src/shared/lib/rabbitmq"
	"github.com/veedubyou/stem-separator/src/shared/lib/storagepath"
	"google.golang.org/api/option"
)

type HTTPMethod string

const (
	GET  HTTPMethod = "GET"
	POST HTTPMethod = "POST"
)

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

type App struct {
	echo      *echo.Echo
	port      string
	publisher rabbitmq.Publisher
}

type Config struct {
	Port               string
	Log                bool
	CORSAllowedOrigins []string

	UploadDir string
	OutputDir string

	FFmpegBinPath        string
	DemucsBinPath        string
	DemucsModel          string
	DeviceProbeBinPath   string
	ModelWorkingDirPath  string
	InferenceConcurrency int64

	// an empty URL turns completion events off
	RabbitMQURL       string
	RabbitMQQueueName string

	// nil keeps stems on local disk only
	CloudStorageConfig config.CloudStorage

	// nil runs the real binaries
	Executor executor.Executor
}

func NewApp(config Config) App {
	e := echo.New()
	e.HideBanner = true

	if config.Log {
		e.Use(middleware.Logger())
	}

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc) {
		params := func() (string, echo.HandlerFunc, echo.MiddlewareFunc) {
			return path, handlerFunc, corsMiddleware
		}

		e.OPTIONS(params())

		switch method {
		case GET:
			e.GET(params())
		case POST:
			e.POST(params())
		default:
			panic("unhandled http method!")
		}
	}

	publisher := makeRabbitMQPublisher(config)
	separationGateway := makeSeparationGateway(config, publisher)

	metrics.MustRegister()

	handleRoute(GET, "/health", separationGateway.Health)

	handleRoute(POST, "/api/separate", separationGateway.Separate)
	handleRoute(GET, "/api/download/:job_id/:stem", func(c echo.Context) error {
		jobID := c.Param("job_id")
		stem := c.Param("stem")
		return separationGateway.Download(c, jobID, stem)
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return App{
		echo:      e,
		port:      config.Port,
		publisher: publisher,
	}
}

func (a *App) Start() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	if queuePublisher, ok := a.publisher.(*rabbitmq.QueuePublisher); ok {
		if err := queuePublisher.Close(); err != nil {
			return errors.Wrap(err, "Failed to close rabbitMQ publisher")
		}
	}

	return nil
}

func makeExecutor(config Config) executor.Executor {
	if config.Executor != nil {
		return config.Executor
	}

	return executor.BinaryFileExecutor{}
}

func makeRabbitMQPublisher(config Config) rabbitmq.Publisher {
	if config.RabbitMQURL == "" {
		return rabbitmq.NoopPublisher{}
	}

	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create rabbitMQ publisher"))
	}

	return publisher
}

func newGoogleFileStore(cloudStorageConfig config.CloudStorage) store.GoogleFileStore {
	if err := cloudStorageConfig.Validate(); err != nil {
		panic(errors.Wrap(err, "Invalid cloud storage config"))
	}

	switch t := cloudStorageConfig.(type) {
	case config.ProdCloudStorage:
		return must(store.NewGoogleFileStore(
			t.StorageHost,
			option.WithCredentialsJSON([]byte(t.SecretKey)),
		))

	case config.LocalCloudStorage:
		return must(store.NewGoogleFileStore(
			t.StorageHost,
			option.WithEndpoint(t.HostEndpoint),
			option.WithAPIKey("fake_api_key"),
		))

	default:
		panic("Unexpected cloud storage config type")
	}
}

func makeResultWriter(config Config, storageLayout layout.Layout) writer.ResultWriter {
	resultWriter := writer.NewResultWriter(storageLayout)
	if config.CloudStorageConfig == nil {
		return resultWriter
	}

	pathGenerator := storagepath.Generator{
		Host:   config.CloudStorageConfig.GetStorageHost(),
		Bucket: config.CloudStorageConfig.GetBucket(),
	}

	return resultWriter.WithMirror(newGoogleFileStore(config.CloudStorageConfig), pathGenerator)
}

func makeSeparationGateway(config Config, publisher rabbitmq.Publisher) separationgateway.Gateway {
	mediaExecutor := makeExecutor(config)

	storageLayout := must(layout.NewLayout(config.UploadDir, config.OutputDir))
	if err := storageLayout.Ensure(); err != nil {
		panic(err)
	}

	extractor := stager.NewFFmpegExtractor(config.FFmpegBinPath, mediaExecutor)
	mediaStager := stager.NewStager(storageLayout, extractor)

	devices := model.NewDeviceResolver(config.DeviceProbeBinPath, mediaExecutor)
	loader := must(model.NewDemucsLoader(
		config.DemucsBinPath,
		config.DemucsModel,
		config.ModelWorkingDirPath,
		devices,
		mediaExecutor,
	))
	handle := model.NewHandle(loader, devices, config.InferenceConcurrency)

	usecase := separationusecase.NewUsecase(
		storageLayout,
		mediaStager,
		handle,
		makeResultWriter(config, storageLayout),
		publisher,
	)

	return separationgateway.NewGateway(usecase)
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType},
	})
}
