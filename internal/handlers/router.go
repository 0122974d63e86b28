package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/metrics"
	"alfredoptarigan/resume-roast/internal/ratelimit"
	"alfredoptarigan/resume-roast/internal/repositories"
	"alfredoptarigan/resume-roast/internal/services"
)

// Dependencies is everything NewApp wires into routes. Persistence fields may
// be nil, in which case the matching routes are not registered.
type Dependencies struct {
	Tasks    *services.TaskSet
	Limiter  *ratelimit.Middleware
	Policies map[string]ratelimit.Policy

	Archiver    services.Archiver
	Generations repositories.GenerationRepository
	Documents   repositories.DocumentRepository
	Storage     services.StorageService
	PDFParser   services.PDFParserService

	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	BodyLimit   int
	MaxFileSize int64
	// RequestLog enables fiber's per-request access log.
	RequestLog bool
}

// Routes served by the pipeline tasks.
const (
	RouteRoast       = "/api/roast"
	RouteFix         = "/api/fix"
	RouteContent     = "/api/generate-content"
	RoutePreview     = "/api/generate-preview"
	RouteParseCV     = "/api/parse-cv"
	RouteParseUpload = "/api/parse-cv/upload"
)

func NewApp(deps Dependencies) *fiber.App {
	log := logger.OrNop(deps.Logger)

	bodyLimit := deps.BodyLimit
	if int64(bodyLimit) < deps.MaxFileSize {
		bodyLimit = int(deps.MaxFileSize) + 1<<16
	}

	app := fiber.New(fiber.Config{
		AppName:               "Resume Roast API",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          90 * time.Second,
		BodyLimit:             bodyLimit,
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if deps.RequestLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "X-RateLimit-Remaining, X-RateLimit-Limit, Retry-After, X-Generation-ID",
	}))

	app.Get("/_health", HandleHealth)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	routes := []struct {
		path   string
		runner services.Runner
	}{
		{RouteRoast, deps.Tasks.Roast},
		{RouteFix, deps.Tasks.Fix},
		{RouteContent, deps.Tasks.Content},
		{RoutePreview, deps.Tasks.Preview},
		{RouteParseCV, deps.Tasks.Parse},
	}

	for _, r := range routes {
		h := NewGenerateHandler(r.runner, deps.Archiver, deps.Metrics, log)
		app.Post(r.path, deps.Limiter.Limit(r.runner.Name(), policyFor(deps.Policies, r.runner.Name())), h.Handle)
		app.All(r.path, MethodNotAllowed)
	}

	if deps.Storage != nil && deps.PDFParser != nil {
		upload := NewUploadHandler(
			deps.Tasks.Parse,
			deps.Documents,
			deps.Storage,
			deps.PDFParser,
			deps.Archiver,
			deps.MaxFileSize,
			deps.Metrics,
			log,
		)
		app.Post(RouteParseUpload, deps.Limiter.Limit(services.TaskParseCV, policyFor(deps.Policies, services.TaskParseCV)), upload.HandleUpload)
		app.All(RouteParseUpload, MethodNotAllowed)
	}

	if deps.Generations != nil {
		results := NewResultHandler(deps.Generations, log)
		app.Get("/api/generations", results.HandleListGenerations)
		app.Get("/api/generations/:id", results.HandleGetGeneration)
	}

	return app
}

func policyFor(policies map[string]ratelimit.Policy, task string) ratelimit.Policy {
	if p, ok := policies[task]; ok {
		return p
	}
	return ratelimit.DefaultPolicy
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
