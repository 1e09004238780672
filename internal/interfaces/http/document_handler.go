package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// DocumentHandler expone el motor SIFEN y los documentos emitidos.
type DocumentHandler struct {
	svc *billing.DocumentService
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(svc *billing.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// ── Motor (sin persistencia) ─────────────────────────────────────────────────

// GenerateXML genera el XML rDE. Con ?format=xml responde el XML crudo.
// POST /api/sifen/xml
func (h *DocumentHandler) GenerateXML(c *fiber.Ctx) error {
	in, opts, bad := h.parseGenerate(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, err := h.svc.GenerateXML(in.Params, in.Data, opts)
	if err != nil {
		return writeError(c, err)
	}
	if c.Query("format") == "xml" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		return c.SendString(res.XML)
	}
	return c.JSON(dto.XMLResponse{
		CDC:          res.CDC,
		XML:          res.XML,
		TotalGeneral: res.Totals.General,
		TotalIVA:     res.Totals.IVA,
	})
}

// GenerateCDC genera solo el CDC.
// POST /api/sifen/cdc
func (h *DocumentHandler) GenerateCDC(c *fiber.Ctx) error {
	in, _, bad := h.parseGenerate(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	cdc, err := h.svc.GenerateCDC(in.Params, in.Data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CDCResponse{CDC: cdc})
}

// Validate valida sin generar. Responde 200 con {success, errors} aunque haya errores.
// POST /api/sifen/validate
func (h *DocumentHandler) Validate(c *fiber.Ctx) error {
	in, _, bad := h.parseGenerate(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	return c.JSON(h.svc.ValidateData(in.Params, in.Data))
}

// GenerateEventXML genera el XML rEvento.
// POST /api/sifen/events/xml
func (h *DocumentHandler) GenerateEventXML(c *fiber.Ctx) error {
	in, ev, opts, bad := h.parseEvent(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	out, err := h.svc.GenerateEventXML(in.ID, in.Params, ev, opts)
	if err != nil {
		return writeError(c, err)
	}
	if c.Query("format") == "xml" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		return c.SendString(out)
	}
	return c.JSON(dto.EventXMLResponse{ID: in.ID, Tipo: ev.Type().String(), XML: out})
}

// BuildQR arma el payload QR de un documento emitido fuera de esta API.
// POST /api/sifen/qr
func (h *DocumentHandler) BuildQR(c *fiber.Ctx) error {
	var in dto.QRRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	fecha, err := sifen.ParseDateTime(in.Fecha)
	if err != nil {
		return writeError(c, sifen.WithField(err, "fecha"))
	}
	doc := &entity.Document{
		CDC:         in.CDC,
		Fecha:       fecha,
		RucReceptor: in.RucReceptor,
		Total:       in.Total,
		Impuesto:    in.IVA,
		XML:         in.XML,
	}
	payload, ok := h.svc.BuildQRPayload(doc)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cdc y rucReceptor son obligatorios"})
	}
	return c.JSON(dto.QRResponse{Payload: payload, URL: h.svc.QRURL(payload)})
}

// ── Documentos ───────────────────────────────────────────────────────────────

// Issue emite y guarda un DE.
// POST /api/documents
func (h *DocumentHandler) Issue(c *fiber.Ctx) error {
	in, opts, bad := h.parseGenerate(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	if !sameRUC(c, in.Params) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el RUC del emisor no corresponde al token"})
	}
	doc, err := h.svc.Issue(c.Context(), in.Params, in.Data, opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentFromEntity(doc, false))
}

// Get devuelve el documento con su XML.
// GET /api/documents/:id
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.svc.GetDocument(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentFromEntity(doc, true))
}

// QR payload y URL de consulta del documento.
// GET /api/documents/:id/qr
func (h *DocumentHandler) QR(c *fiber.Ctx) error {
	payload, url, err := h.svc.QRForDocument(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QRResponse{Payload: payload, URL: url})
}

// KuDE descarga la representación gráfica en PDF.
// GET /api/documents/:id/kude
func (h *DocumentHandler) KuDE(c *fiber.Ctx) error {
	pdf, filename, err := h.svc.RenderKuDE(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// ListEvents eventos del documento.
// GET /api/documents/:id/events
func (h *DocumentHandler) ListEvents(c *fiber.Ctx) error {
	list, err := h.svc.ListEvents(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.EventResponse, 0, len(list))
	for _, ev := range list {
		out = append(out, dto.EventFromEntity(ev, false))
	}
	return c.JSON(out)
}

// RegisterEvent genera y guarda un evento.
// POST /api/documents/events
func (h *DocumentHandler) RegisterEvent(c *fiber.Ctx) error {
	in, ev, _, bad := h.parseEvent(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	if !sameRUC(c, in.Params) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el RUC del emisor no corresponde al token"})
	}
	rec, err := h.svc.RegisterEvent(c.Context(), in.ID, in.Params, ev)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.EventFromEntity(rec, true))
}

// Send entrega el documento al SIFEN.
// POST /api/documents/:id/send
func (h *DocumentHandler) Send(c *fiber.Ctx) error {
	res, err := h.svc.Send(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SendResponse{Protocolo: res.ProtocolNumber, Aceptado: res.Accepted, Mensajes: res.Messages})
}

// ── helpers ───────────────────────────────────────────────────────────────────

// parseGenerate lee el body y las opciones; bad != nil es el cuerpo del 400.
func (h *DocumentHandler) parseGenerate(c *fiber.Ctx) (in *dto.GenerateRequest, opts *infra.Options, bad *dto.ErrorResponse) {
	in = &dto.GenerateRequest{}
	if err := c.BodyParser(in); err != nil {
		return nil, nil, &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	opts, err := dto.MergeOptions(h.svc.Options(), in.Options)
	if err != nil {
		return nil, nil, &dto.ErrorResponse{Code: "INVALID_OPTIONS", Message: err.Error()}
	}
	return in, opts, nil
}

func (h *DocumentHandler) parseEvent(c *fiber.Ctx) (in *dto.EventRequest, ev entity.EventData, opts *infra.Options, bad *dto.ErrorResponse) {
	in = &dto.EventRequest{}
	if err := c.BodyParser(in); err != nil {
		return nil, nil, nil, &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	ev, err := in.Decode()
	if err != nil {
		return nil, nil, nil, &dto.ErrorResponse{Code: "INVALID_EVENT", Message: err.Error()}
	}
	opts, err = dto.MergeOptions(h.svc.Options(), in.Options)
	if err != nil {
		return nil, nil, nil, &dto.ErrorResponse{Code: "INVALID_OPTIONS", Message: err.Error()}
	}
	return in, ev, opts, nil
}

// sameRUC un token restringido a un RUC solo opera sobre ese emisor.
func sameRUC(c *fiber.Ctx, p *entity.ContributorParams) bool {
	ruc := GetRUC(c)
	return ruc == "" || p == nil || p.RUC == ruc
}

// writeError traduce errores del dominio a HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var ve *rules.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{Code: "VALIDATION", Message: ve.Error(), Errors: ve.Errors})
	case errors.Is(err, sifen.ErrFormat), errors.Is(err, rules.ErrAssembly),
		errors.Is(err, domain.ErrInvalidInput), errors.Is(err, entity.ErrUnsupportedEvent):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "documento no encontrado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
