package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"chikondi-pos/config"
	"chikondi-pos/middleware"
	"chikondi-pos/models"
)

// Server is the sync backend: it accepts batches of offline records from the
// POS client and keeps them as per-collection upload history.
type Server struct {
	store *FileStore
	log   *slog.Logger
}

func New(store *FileStore, log *slog.Logger) *Server {
	return &Server{store: store, log: log}
}

// App builds the configured fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 30,
		DisableStartupMessage: config.AppConfig.Env == "production",
		ErrorHandler:          s.errorHandler(),
		ReadBufferSize:        8192,
	})

	app.Use(
		recover.New(),
		middleware.StructuredLogger(s.log),
		middleware.Security(),
		cors.New(cors.Config{
			AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
			MaxAge:       86400,
		}),
		limiter.New(limiter.Config{
			Max:        200,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
	)

	app.Get("/api/health", s.Health)
	app.Post("/api/sync", s.Sync)
	app.Get("/api/data/:collection", s.GetCollection)
	app.Get("/api/data-summary", s.DataSummary)

	return app
}

// Health reports the backend is alive.
func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// syncRequest mirrors models.SyncBatch but keeps records raw: the backend
// archives exactly what the client sent.
type syncRequest struct {
	Sales     []json.RawMessage `json:"sales"`
	Inventory []json.RawMessage `json:"inventory"`
	Expenses  []json.RawMessage `json:"expenses"`
	Customers []json.RawMessage `json:"customers"`
}

// Sync accepts one batch of unsynced records and appends each collection to
// its archive. All-or-nothing per request: the client only marks records
// synced on a success reply.
func (s *Server) Sync(c *fiber.Ctx) error {
	var req syncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SyncResponse{
			Success: false,
			Error:   "invalid request body",
		})
	}

	var counts models.SyncCounts
	var err error

	if counts.Sales, err = s.store.Append("sales", req.Sales); err != nil {
		return s.syncError(c, err)
	}
	if counts.Inventory, err = s.store.Append("inventory", req.Inventory); err != nil {
		return s.syncError(c, err)
	}
	if counts.Expenses, err = s.store.Append("expenses", req.Expenses); err != nil {
		return s.syncError(c, err)
	}
	if counts.Customers, err = s.store.Append("customers", req.Customers); err != nil {
		return s.syncError(c, err)
	}

	s.log.Info("batch received", "total", counts.Total())

	return c.JSON(models.SyncResponse{
		Success:   true,
		Message:   "data synced successfully",
		Synced:    counts,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) syncError(c *fiber.Ctx, err error) error {
	s.log.Error("sync store failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.SyncResponse{
		Success: false,
		Error:   "failed to store sync data",
	})
}

// GetCollection returns everything archived for one collection.
func (s *Server) GetCollection(c *fiber.Ctx) error {
	collection := c.Params("collection")

	records, err := s.store.Read(collection)
	if errors.Is(err, ErrUnknownCollection) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "unknown collection",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read collection",
		})
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"collection": collection,
		"count":      len(records),
		"data":       records,
	})
}

// DataSummary returns per-collection record counts.
func (s *Server) DataSummary(c *fiber.Ctx) error {
	counts, err := s.store.Counts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read collections",
		})
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"collections": counts,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) errorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		requestID := ""
		if id, ok := c.Locals("requestID").(string); ok {
			requestID = id
		}

		s.log.Error("request failed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"request_id": requestID,
		})
	}
}
