package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, cdc, tipo_documento, numero, xml, fecha, ruc_receptor,
       total, impuesto, estado, qr_data, created_at, updated_at`

// Create persiste el documento generado.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CDC, doc.TipoDocumento, doc.Numero, doc.XML, doc.Fecha, doc.RucReceptor,
		doc.Total, doc.Impuesto, doc.Estado, nullIfEmpty(doc.QRData), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cdc %s ya registrado", domain.ErrConflict, doc.CDC)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetByCDC obtiene un documento por CDC.
func (r *DocumentRepo) GetByCDC(ctx context.Context, cdc string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE cdc = $1`, cdc)
}

func (r *DocumentRepo) getOne(ctx context.Context, query string, arg string) (*entity.Document, error) {
	var doc entity.Document
	var qrData *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&doc.ID, &doc.CDC, &doc.TipoDocumento, &doc.Numero, &doc.XML, &doc.Fecha, &doc.RucReceptor,
		&doc.Total, &doc.Impuesto, &doc.Estado, &qrData, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if qrData != nil {
		doc.QRData = *qrData
	}
	return &doc, nil
}

// UpdateEstado actualiza estado y, si se informa, el XML.
func (r *DocumentRepo) UpdateEstado(ctx context.Context, id, estado, xml string) error {
	query := `
		UPDATE documents
		SET estado     = $2,
		    xml        = COALESCE($3, xml),
		    updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, estado, nullIfEmpty(xml))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: sin filas afectadas", id)
	}
	return nil
}

// AddEvent persiste un evento. DocumentID vacío (inutilización) se guarda como NULL.
func (r *DocumentRepo) AddEvent(ctx context.Context, ev *entity.DocumentEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	query := `
		INSERT INTO document_events (id, document_id, tipo, descripcion, datos, xml, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, nullIfEmpty(ev.DocumentID), ev.Tipo, ev.Descripcion, ev.Datos, ev.XML, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document event: %w", err)
	}
	return nil
}

// ListEvents devuelve los eventos de un documento en orden de registro.
func (r *DocumentRepo) ListEvents(ctx context.Context, documentID string) ([]*entity.DocumentEvent, error) {
	query := `
		SELECT id, document_id, tipo, descripcion, datos, xml, created_at
		FROM document_events WHERE document_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document events: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentEvent
	for rows.Next() {
		var ev entity.DocumentEvent
		var docID *string
		if err := rows.Scan(&ev.ID, &docID, &ev.Tipo, &ev.Descripcion, &ev.Datos, &ev.XML, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document event: %w", err)
		}
		if docID != nil {
			ev.DocumentID = *docID
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
