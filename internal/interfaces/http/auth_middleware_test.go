package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/sifen-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/sifen-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testSubject   = "erp-integrador"
	testRUC       = "80069563-1"
	testIssuer    = "sifen-api-test"
	testExpMin    = 60
)

// buildScopeApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireScope para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildScopeApp(allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireScope(allowed...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "scope": apphttp.GetScope(c)})
		},
	)
	return app
}

// tokenFor genera un JWT con el alcance indicado.
func tokenFor(t *testing.T, ruc, scope string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testSubject, ruc, scope, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireScope
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireScope_EmitirAccedeRutaEmitir(t *testing.T) {
	app := buildScopeApp(pkgjwt.ScopeEmitir)
	resp := doGet(t, app, "/protected", tokenFor(t, testRUC, pkgjwt.ScopeEmitir))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "emitir", body["scope"])
}

func TestRequireScope_ConsultarEnRutaMixta(t *testing.T) {
	app := buildScopeApp(pkgjwt.ScopeEmitir, pkgjwt.ScopeConsultar)
	resp := doGet(t, app, "/protected", tokenFor(t, testRUC, pkgjwt.ScopeConsultar))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireScope_ConsultarBloqueadoEnRutaEmitir(t *testing.T) {
	app := buildScopeApp(pkgjwt.ScopeEmitir)
	resp := doGet(t, app, "/protected", tokenFor(t, testRUC, pkgjwt.ScopeConsultar))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireScope_TokenSinAlcance_Retorna401(t *testing.T) {
	app := buildScopeApp(pkgjwt.ScopeEmitir)
	resp := doGet(t, app, "/protected", tokenFor(t, testRUC, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_SCOPE")
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	resp := doGet(t, buildScopeApp(pkgjwt.ScopeEmitir), "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	app := buildScopeApp(pkgjwt.ScopeEmitir)

	resp := doGet(t, app, "/protected", "Token abc")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := doGet(t, app, "/protected", "Bearer token.invalido.aqui")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"subject": apphttp.GetSubject(c),
			"ruc":     apphttp.GetRUC(c),
			"scope":   apphttp.GetScope(c),
		})
	})

	resp := doGet(t, app, "/me", tokenFor(t, testRUC, pkgjwt.ScopeConsultar))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testSubject, body["subject"])
	assert.Equal(t, testRUC, body["ruc"])
	assert.Equal(t, "consultar", body["scope"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testSubject, testRUC, pkgjwt.ScopeEmitir, testIssuer, testExpMin)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testSubject, claims.Subject)
	assert.Equal(t, testRUC, claims.RUC)
	assert.Equal(t, pkgjwt.ScopeEmitir, claims.Scope)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testSubject, testRUC, pkgjwt.ScopeEmitir, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testSubject, testRUC, pkgjwt.ScopeEmitir, testIssuer, testExpMin)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)

	_, err = pkgjwt.Generate("", testSubject, testRUC, pkgjwt.ScopeEmitir, testIssuer, testExpMin)
	assert.Error(t, err, "secret vacío no firma")
}
