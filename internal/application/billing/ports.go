package billing

import (
	"context"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con un repositorio de documentos atado a ella.
type TxRunner interface {
	RunDocuments(ctx context.Context, fn func(repo repository.DocumentRepository) error) error
}

// KuDEGenerator genera la representación gráfica (KuDE) de un DE guardado.
// qrURL es la URL completa de consulta que se imprime como código QR.
type KuDEGenerator interface {
	GenerateKuDE(ctx context.Context, doc *entity.Document, qrURL string) ([]byte, error)
}
