package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Docs      *billing.DocumentService
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	h := NewDocumentHandler(deps.Docs)

	anyScope := RequireScope(jwt.ScopeEmitir, jwt.ScopeConsultar)
	emitir := RequireScope(jwt.ScopeEmitir)

	// Motor SIFEN: generación sin persistencia
	engine := protected.Group("/sifen", anyScope)
	engine.Post("/xml", h.GenerateXML)
	engine.Post("/cdc", h.GenerateCDC)
	engine.Post("/validate", h.Validate)
	engine.Post("/events/xml", h.GenerateEventXML)
	engine.Post("/qr", h.BuildQR)

	// Documentos emitidos
	docs := protected.Group("/documents")
	docs.Post("/", emitir, h.Issue)
	docs.Post("/events", emitir, h.RegisterEvent)
	docs.Post("/:id/send", emitir, h.Send)
	docs.Get("/:id", anyScope, h.Get)
	docs.Get("/:id/qr", anyScope, h.QR)
	docs.Get("/:id/kude", anyScope, h.KuDE)
	docs.Get("/:id/events", anyScope, h.ListEvents)
}
