package sifen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Longitud del digest derivado cuando el XML no trae DigestValue.
const digestHexLength = 28

var (
	digestPattern   = regexp.MustCompile(`<(?:[\w-]+:)?DigestValue>([^<]*)</(?:[\w-]+:)?DigestValue>`)
	itemOpenPattern = regexp.MustCompile(`<gCamItem[\s>]`)
)

// QRConfig parámetros del QR tomados de la configuración.
type QRConfig struct {
	Version int    // nVersion; 0 => 150
	CSCID   string // IdCSC; vacío => 0001
	CSC     string // secreto del CSC para cHashQR; vacío => la URL no lleva hash
	BaseURL string // URL de consulta del ambiente (test/prod)
}

// QRBuilderService arma el payload de verificación del QR a partir de un documento guardado.
type QRBuilderService struct {
	cfg QRConfig
}

// NewQRBuilderService crea el servicio aplicando valores por defecto.
func NewQRBuilderService(cfg QRConfig) *QRBuilderService {
	if cfg.Version == 0 {
		cfg.Version = sifen.SchemaVersion
	}
	if cfg.CSCID == "" {
		cfg.CSCID = sifen.DefaultCSCID
	}
	return &QRBuilderService{cfg: cfg}
}

// BuildPayload arma los nueve pares key=value separados por &.
// Devuelve false si el documento no tiene CDC o RUC del receptor.
func (s *QRBuilderService) BuildPayload(doc *entity.Document) (string, bool) {
	if doc == nil || strings.TrimSpace(doc.CDC) == "" || strings.TrimSpace(doc.RucReceptor) == "" {
		return "", false
	}
	pairs := []string{
		fmt.Sprintf("nVersion=%d", s.cfg.Version),
		"Id=" + doc.CDC,
		"dFeEmiDE=" + doc.Fecha.Format(sifen.LayoutDate),
		"dRucRec=" + doc.RucReceptor,
		"dTotGralOpe=" + sifen.FormatDecimal(doc.Total, 0),
		"dTotIVA=" + sifen.FormatDecimal(doc.Impuesto, 0),
		fmt.Sprintf("cItems=%d", ItemCount(doc.XML)),
		"DigestValue=" + Digest(doc.XML, doc.CDC),
		"IdCSC=" + s.cfg.CSCID,
	}
	return strings.Join(pairs, "&"), true
}

// URL arma la URL de consulta del QR. Con CSC configurado agrega cHashQR = SHA-256(payload + CSC).
func (s *QRBuilderService) URL(payload string) string {
	u := payload
	if s.cfg.CSC != "" {
		sum := sha256.Sum256([]byte(payload + s.cfg.CSC))
		u += "&cHashQR=" + hex.EncodeToString(sum[:])
	}
	if s.cfg.BaseURL == "" {
		return u
	}
	return strings.TrimRight(s.cfg.BaseURL, "?") + "?" + u
}

// Digest devuelve el DigestValue del XML firmado. Sin firma: primeros 28 hex del SHA-256 del XML;
// sin XML: del SHA-256 del CDC.
func Digest(xmlText, cdc string) string {
	if m := digestPattern.FindStringSubmatch(xmlText); m != nil {
		return m[1]
	}
	source := xmlText
	if strings.TrimSpace(source) == "" {
		source = cdc
	}
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])[:digestHexLength]
}

// ItemCount cuenta los gCamItem del XML; 1 si no hay ninguno.
func ItemCount(xmlText string) int {
	n := len(itemOpenPattern.FindAllStringIndex(xmlText, -1))
	if n == 0 {
		return 1
	}
	return n
}
