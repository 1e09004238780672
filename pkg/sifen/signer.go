// Package sifen: interfaces de los colaboradores externos (firma y envío al SIFEN).

package sifen

import "context"

// Signer firma el XML de un DE o evento y devuelve el XML con el nodo ds:Signature.
// La implementación (certificado, XMLDSig) vive fuera de este módulo.
type Signer interface {
	Sign(xmlBytes []byte) ([]byte, error)
}

// SubmitResult resultado devuelto por el cliente del SIFEN.
type SubmitResult struct {
	ProtocolNumber string
	Accepted       bool
	Messages       []string
}

// Submitter entrega un XML (firmado) al SIFEN.
type Submitter interface {
	Submit(ctx context.Context, xmlBytes []byte) (*SubmitResult, error)
}
