package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	"github.com/jhoicas/sifen-api/internal/infrastructure/metrics"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/logger"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Deps dependencias del DocumentService. Repo, Tx, Signer, Submitter y KuDE son opcionales:
// sin ellos solo funcionan las operaciones puras (generar, validar, QR).
type Deps struct {
	Validator *rules.Validator
	CDC       *rules.CDCGeneratorService
	XML       *infra.XMLBuilderService
	Events    *infra.EventBuilderService
	QR        *infra.QRBuilderService
	Repo      repository.DocumentRepository
	Tx        TxRunner
	Signer    sifen.Signer
	Submitter sifen.Submitter
	KuDE      KuDEGenerator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Clock     clockwork.Clock
	Options   infra.Options // valor cero => infra.DefaultOptions()
}

// DocumentService fachada del motor SIFEN: generación de XML, CDC, validación, eventos y QR,
// más la emisión con persistencia y registro de eventos.
type DocumentService struct {
	validator *rules.Validator
	cdc       *rules.CDCGeneratorService
	xml       *infra.XMLBuilderService
	events    *infra.EventBuilderService
	qr        *infra.QRBuilderService
	repo      repository.DocumentRepository
	tx        TxRunner
	signer    sifen.Signer
	submitter sifen.Submitter
	kude      KuDEGenerator
	metrics   *metrics.Metrics
	log       *logger.Logger
	clock     clockwork.Clock
	opts      infra.Options
}

// NewDocumentService construye el servicio completando los colaboradores no informados.
func NewDocumentService(d Deps) *DocumentService {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Validator == nil {
		d.Validator = rules.NewValidator(d.Clock)
	}
	if d.CDC == nil {
		d.CDC = rules.NewCDCGeneratorService()
	}
	if d.XML == nil {
		d.XML = infra.NewXMLBuilderService(d.Validator, d.CDC, d.Clock)
	}
	if d.Events == nil {
		d.Events = infra.NewEventBuilderService(d.Validator, d.Clock)
	}
	if d.QR == nil {
		d.QR = infra.NewQRBuilderService(infra.QRConfig{})
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Options == (infra.Options{}) {
		d.Options = infra.DefaultOptions()
	}
	return &DocumentService{
		validator: d.Validator,
		cdc:       d.CDC,
		xml:       d.XML,
		events:    d.Events,
		qr:        d.QR,
		repo:      d.Repo,
		tx:        d.Tx,
		signer:    d.Signer,
		submitter: d.Submitter,
		kude:      d.KuDE,
		metrics:   d.Metrics,
		log:       d.Logger,
		clock:     d.Clock,
		opts:      d.Options.Normalize(),
	}
}

// Options opciones de generación configuradas (copia).
func (s *DocumentService) Options() infra.Options { return s.opts }

func (s *DocumentService) resolve(opts *infra.Options) infra.Options {
	if opts == nil {
		return s.opts
	}
	return *opts
}

// ── Operaciones puras ────────────────────────────────────────────────────────

// GenerateXML valida y arma el XML rDE. opts nil => opciones configuradas.
func (s *DocumentService) GenerateXML(params *entity.ContributorParams, data *entity.DocumentData, opts *infra.Options) (*infra.BuildResult, error) {
	start := time.Now()
	res, err := s.xml.Build(params, data, s.resolve(opts))
	if err != nil {
		s.failed("document", err)
		return nil, err
	}
	s.metrics.ObserveBuild("de", time.Since(start))
	s.metrics.IncGenerated(strconv.Itoa(data.TipoDocumento))
	s.log.Info().Str("cdc", res.CDC).Int("tipo", data.TipoDocumento).Msg("DE generado")
	return res, nil
}

// GenerateCDC genera solo el CDC.
func (s *DocumentService) GenerateCDC(params *entity.ContributorParams, data *entity.DocumentData) (string, error) {
	cdc, err := s.cdc.Generate(params, data)
	if err != nil {
		s.failed("cdc", err)
		return "", err
	}
	return cdc, nil
}

// ValidateData valida sin generar; nunca falla.
func (s *DocumentService) ValidateData(params *entity.ContributorParams, data *entity.DocumentData) rules.Result {
	res := s.validator.ValidateDocument(params, data)
	if !res.Valid {
		s.metrics.IncValidationFailure("document")
	}
	return res
}

// GenerateEventXML valida y arma el XML rEvento. opts nil => opciones configuradas.
func (s *DocumentService) GenerateEventXML(id string, params *entity.ContributorParams, ev entity.EventData, opts *infra.Options) (string, error) {
	start := time.Now()
	out, err := s.events.Build(id, params, ev, s.resolve(opts))
	if err != nil {
		s.failed("event", err)
		return "", err
	}
	s.metrics.ObserveBuild("evento", time.Since(start))
	s.metrics.IncEvent(ev.Type().String())
	s.log.Info().Str("id", id).Str("evento", ev.Type().String()).Str("cdc", entity.TargetCDC(ev)).Msg("evento generado")
	return out, nil
}

// BuildQRPayload arma el payload QR de un documento guardado; false si falta CDC o receptor.
func (s *DocumentService) BuildQRPayload(doc *entity.Document) (string, bool) {
	return s.qr.BuildPayload(doc)
}

// QRURL URL de consulta para un payload.
func (s *DocumentService) QRURL(payload string) string {
	return s.qr.URL(payload)
}

// ── Emisión y persistencia ───────────────────────────────────────────────────

// Issue genera el DE, lo firma si hay Signer, calcula el QR y lo guarda.
// Un CDC que ya existe devuelve domain.ErrConflict. opts nil => opciones configuradas.
func (s *DocumentService) Issue(ctx context.Context, params *entity.ContributorParams, data *entity.DocumentData, opts *infra.Options) (*entity.Document, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: repositorio de documentos", domain.ErrUnavailable)
	}
	if data != nil && data.CDC != "" {
		existing, err := s.repo.GetByCDC(ctx, data.CDC)
		if err != nil {
			return nil, fmt.Errorf("emitir: buscar cdc: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: cdc %s ya emitido", domain.ErrConflict, data.CDC)
		}
	}

	res, err := s.GenerateXML(params, data, opts)
	if err != nil {
		return nil, err
	}
	xmlText, estado, err := s.sign(res.XML)
	if err != nil {
		return nil, fmt.Errorf("emitir: %w", err)
	}
	fecha, err := sifen.ParseDateTime(data.Fecha)
	if err != nil {
		return nil, sifen.WithField(err, "fecha")
	}

	now := s.clock.Now()
	doc := &entity.Document{
		ID:            uuid.New().String(),
		CDC:           res.CDC,
		TipoDocumento: data.TipoDocumento,
		Numero:        documentNumber(data),
		XML:           xmlText,
		Fecha:         fecha,
		RucReceptor:   receiverID(data.Cliente),
		Total:         res.Totals.General,
		Impuesto:      res.Totals.IVA,
		Estado:        estado,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if payload, ok := s.qr.BuildPayload(doc); ok {
		doc.QRData = payload
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("emitir: guardar documento: %w", err)
	}
	s.log.Info().Str("id", doc.ID).Str("cdc", doc.CDC).Str("estado", doc.Estado).Msg("DE emitido")
	return doc, nil
}

// RegisterEvent genera el evento, lo firma si hay Signer y lo guarda junto al documento referido.
// La cancelación pasa el documento a CANCELADO en la misma transacción.
func (s *DocumentService) RegisterEvent(ctx context.Context, id string, params *entity.ContributorParams, ev entity.EventData) (*entity.DocumentEvent, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: repositorio de documentos", domain.ErrUnavailable)
	}
	out, err := s.GenerateEventXML(id, params, ev, nil)
	if err != nil {
		return nil, err
	}

	var doc *entity.Document
	if cdc := entity.TargetCDC(ev); cdc != "" {
		doc, err = s.repo.GetByCDC(ctx, cdc)
		if err != nil {
			return nil, fmt.Errorf("evento: buscar documento: %w", err)
		}
		if doc == nil {
			return nil, fmt.Errorf("%w: documento con cdc %s", domain.ErrNotFound, cdc)
		}
		if doc.Estado == entity.EstadoCancelado {
			return nil, fmt.Errorf("%w: el documento %s ya está cancelado", domain.ErrConflict, cdc)
		}
	}

	out, _, err = s.sign(out)
	if err != nil {
		return nil, fmt.Errorf("evento: %w", err)
	}
	datos, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("evento: serializar datos: %w", err)
	}

	rec := &entity.DocumentEvent{
		ID:          uuid.New().String(),
		Tipo:        ev.Type().String(),
		Descripcion: describeEvent(ev),
		Datos:       datos,
		XML:         out,
		CreatedAt:   s.clock.Now(),
	}
	if doc != nil {
		rec.DocumentID = doc.ID
	}

	persist := func(repo repository.DocumentRepository) error {
		if err := repo.AddEvent(ctx, rec); err != nil {
			return err
		}
		if ev.Type() == entity.EventCancelacion {
			return repo.UpdateEstado(ctx, doc.ID, entity.EstadoCancelado, "")
		}
		return nil
	}
	if s.tx != nil {
		err = s.tx.RunDocuments(ctx, persist)
	} else {
		err = persist(s.repo)
	}
	if err != nil {
		return nil, fmt.Errorf("evento: guardar: %w", err)
	}
	s.log.Info().Str("id", rec.ID).Str("evento", rec.Tipo).Str("document_id", rec.DocumentID).Msg("evento registrado")
	return rec, nil
}

// GetDocument obtiene un documento guardado.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: repositorio de documentos", domain.ErrUnavailable)
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// ListEvents eventos registrados sobre un documento.
func (s *DocumentService) ListEvents(ctx context.Context, documentID string) ([]*entity.DocumentEvent, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListEvents(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("listar eventos: %w", err)
	}
	return list, nil
}

// QRForDocument payload y URL de consulta del QR de un documento guardado.
func (s *DocumentService) QRForDocument(ctx context.Context, id string) (payload, url string, err error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", "", err
	}
	payload, ok := s.qr.BuildPayload(doc)
	if !ok {
		return "", "", fmt.Errorf("%w: el documento no tiene cdc o receptor", domain.ErrInvalidInput)
	}
	return payload, s.qr.URL(payload), nil
}

// RenderKuDE genera el PDF (KuDE) de un documento guardado.
func (s *DocumentService) RenderKuDE(ctx context.Context, id string) (pdf []byte, filename string, err error) {
	if s.kude == nil {
		return nil, "", fmt.Errorf("%w: generador de KuDE", domain.ErrUnavailable)
	}
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, "", err
	}
	var qrURL string
	if payload, ok := s.qr.BuildPayload(doc); ok {
		qrURL = s.qr.URL(payload)
	}
	pdf, err = s.kude.GenerateKuDE(ctx, doc, qrURL)
	if err != nil {
		return nil, "", fmt.Errorf("kude: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("kude_%s.pdf", doc.CDC), nil
}

// Send entrega el XML guardado al SIFEN mediante el Submitter y actualiza el estado.
func (s *DocumentService) Send(ctx context.Context, id string) (*sifen.SubmitResult, error) {
	if s.submitter == nil {
		return nil, fmt.Errorf("%w: cliente SIFEN", domain.ErrUnavailable)
	}
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Estado == entity.EstadoCancelado || doc.Estado == entity.EstadoAprobado {
		return nil, fmt.Errorf("%w: documento en estado %s", domain.ErrConflict, doc.Estado)
	}
	res, err := s.submitter.Submit(ctx, []byte(doc.XML))
	if err != nil {
		if uErr := s.repo.UpdateEstado(ctx, doc.ID, entity.EstadoEnviado, ""); uErr != nil {
			s.log.Error().Err(uErr).Str("id", doc.ID).Msg("no se pudo persistir ENVIADO")
		}
		return nil, fmt.Errorf("enviar: %w", err)
	}
	estado := entity.EstadoRechazado
	if res.Accepted {
		estado = entity.EstadoAprobado
	}
	if err := s.repo.UpdateEstado(ctx, doc.ID, estado, ""); err != nil {
		return nil, fmt.Errorf("enviar: actualizar estado: %w", err)
	}
	s.log.Info().Str("id", doc.ID).Str("estado", estado).Str("protocolo", res.ProtocolNumber).Msg("DE enviado")
	return res, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// sign devuelve el XML firmado y el estado resultante; sin Signer el XML queda igual.
func (s *DocumentService) sign(xmlText string) (string, string, error) {
	if s.signer == nil {
		return xmlText, entity.EstadoGenerado, nil
	}
	signed, err := s.signer.Sign([]byte(xmlText))
	if err != nil {
		return "", "", fmt.Errorf("firmar: %w", err)
	}
	return string(signed), entity.EstadoFirmado, nil
}

func (s *DocumentService) failed(operation string, err error) {
	var ve *rules.ValidationError
	if errors.As(err, &ve) {
		s.metrics.IncValidationFailure(operation)
		s.log.Warn().Str("operation", operation).Strs("errors", ve.Errors).Msg("validación rechazada")
		return
	}
	s.log.Error().Err(err).Str("operation", operation).Msg("generación fallida")
}

// documentNumber número visible del DE: 001-001-0000001.
func documentNumber(d *entity.DocumentData) string {
	return fmt.Sprintf("%s-%s-%s",
		sifen.FormatCode(d.Establecimiento.String(), 3),
		sifen.FormatCode(d.Punto.String(), 3),
		sifen.FormatCode(d.Numero.String(), 7),
	)
}

// receiverID RUC del receptor contribuyente o su número de documento.
func receiverID(c *entity.Client) string {
	switch {
	case c == nil:
		return ""
	case c.Contribuyente:
		return c.RUC
	default:
		return c.DocumentoNumero
	}
}

func describeEvent(ev entity.EventData) string {
	switch e := ev.(type) {
	case *entity.CancellationEvent:
		return e.Motivo
	case *entity.NullificationEvent:
		return fmt.Sprintf("%s (%s a %s)", e.Motivo, e.NumeroInicial, e.NumeroFinal)
	case *entity.ConformityEvent:
		if e.TipoConformidad == sifen.ConformidadParcial {
			return "Conformidad parcial"
		}
		return "Conformidad total"
	case *entity.NonConformityEvent:
		return e.Motivo
	case *entity.RepudiationEvent:
		return e.Motivo
	case *entity.ReceiptNotificationEvent:
		return "Notificación de recepción"
	}
	return ""
}
