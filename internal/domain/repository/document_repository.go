package repository

import (
	"context"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para documentos electrónicos y sus eventos.
// Los Get devuelven (nil, nil) si el registro no existe.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	GetByCDC(ctx context.Context, cdc string) (*entity.Document, error)
	// UpdateEstado cambia el estado y, si no es vacío, el XML (p. ej. tras la firma).
	UpdateEstado(ctx context.Context, id, estado, xml string) error
	AddEvent(ctx context.Context, ev *entity.DocumentEvent) error
	ListEvents(ctx context.Context, documentID string) ([]*entity.DocumentEvent, error)
}
