package bootstrap

import (
	"log"

	"voiceform-be/internal/config"
	"voiceform-be/internal/controller"
	"voiceform-be/internal/handler"
	"voiceform-be/internal/pkg/logger"
	"voiceform-be/internal/repository/contract"
	"voiceform-be/internal/repository/implementation"
	"voiceform-be/internal/repository/memory"
	"voiceform-be/internal/service"
	"voiceform-be/internal/websocket"
	"voiceform-be/pkg/pdfform"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// FormEventsTopic is the in-process bus topic every core event goes through.
const FormEventsTopic = "form_events"

type Container struct {
	// Controllers
	FormController controller.IFormController

	// Background Services (Exposed for main.go to run)
	SessionService service.ISessionService

	// WebSockets
	FormWsHandler *handler.FormWsHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Session Route Table
	// In-memory for a single instance; Redis when updates may land on a
	// sibling instance and need forwarding.
	var routeStore contract.RouteStore
	if cfg.Sync.UseRedisRoutes {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
		}
		routeStore = implementation.NewRedisRouteStore(redis.NewClient(opt), cfg.Session.IdleTimeout)
		log.Printf("[INFO] Using Route Store: REDIS")
	} else {
		routeStore = memory.NewRouteStore(cfg.Session.IdleTimeout)
		log.Printf("[INFO] Using Route Store: MEMORY")
	}

	// 4. PDF Collaborator
	extractor := &pdfform.ManifestExtractor{MaxFields: cfg.Form.MaxFields}
	filler := &pdfform.ManifestFiller{}

	// 5. Services
	publisherService := service.NewPublisherService(FormEventsTopic, pubSub)
	sessionService := service.NewSessionService(
		cfg.Session,
		cfg.Form,
		cfg.Sync.InstanceAddr,
		routeStore,
		publisherService,
		filler,
		sysLogger,
	)
	dispatchService := service.NewDispatchService(sessionService, publisherService, sysLogger)
	syncService := service.NewSyncService(sessionService, dispatchService, routeStore, cfg.Sync, sysLogger)

	// 6. Gateway
	wsLogger := logger.NewIsolatedLogger("logs/gateway.log")
	hub := websocket.NewHub(sessionService, syncService, pubSub, FormEventsTopic, wsLogger)
	wsHandler := handler.NewFormWsHandler(hub, wsLogger)

	// 7. Controllers
	validate := validator.New()
	formController := controller.NewFormController(
		sessionService,
		syncService,
		extractor,
		validate,
		cfg.Form.MaxUploadSize,
	)

	return &Container{
		FormController: formController,
		SessionService: sessionService,
		FormWsHandler:  wsHandler,
		WebSocketHub:   hub,
	}
}
