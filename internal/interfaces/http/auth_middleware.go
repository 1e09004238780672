package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/pkg/jwt"
)

// Locals keys para los claims del token en Fiber.
const (
	LocalSubject = "subject"
	LocalRUC     = "ruc"
	LocalScope   = "scope"
)

// AuthMiddleware valida el Bearer Token JWT y deja sujeto, RUC y alcance en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalSubject, claims.Subject)
		c.Locals(LocalRUC, claims.RUC)
		c.Locals(LocalScope, claims.Scope)
		return c.Next()
	}
}

// RequireScope autoriza solo tokens cuyo alcance esté en allowed. Va después de AuthMiddleware.
//   - 401 MISSING_SCOPE → el token no trae alcance.
//   - 403 FORBIDDEN → alcance no permitido para la ruta.
func RequireScope(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := GetScope(c)
		if scope == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SCOPE", Message: "el token no declara alcance"})
		}
		for _, s := range allowed {
			if s == scope {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "alcance '" + scope + "' no autorizado"})
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetSubject sujeto del token (usuario o sistema integrador).
func GetSubject(c *fiber.Ctx) string { return localString(c, LocalSubject) }

// GetRUC RUC del contribuyente del token; vacío si el token no lo restringe.
func GetRUC(c *fiber.Ctx) string { return localString(c, LocalRUC) }

// GetScope alcance del token.
func GetScope(c *fiber.Ctx) string { return localString(c, LocalScope) }
