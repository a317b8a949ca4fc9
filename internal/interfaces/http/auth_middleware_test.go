package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tradenest-api/internal/application/dto"
	apphttp "github.com/jhoicas/tradenest-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/tradenest-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "tradenest-test"
	testExpMin    = 60
)

// tokenForRole genera el header Authorization para un usuario con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// guardedApp expone GET /guarded detrás de AuthMiddleware + RequireRole y devuelve el actor leído.
func guardedApp(allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowed...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
		},
	)
	return app
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware + RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Casos(t *testing.T) {
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name     string
		allowed  []string
		header   string
		wantCode int
		wantErr  string
	}{
		{"aprobador con rol permitido", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager}, tokenForRole(t, pkgjwt.RoleManager), fiber.StatusOK, ""},
		{"staff fuera de la lista", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager}, tokenForRole(t, pkgjwt.RoleStaff), fiber.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{pkgjwt.RoleAdmin}, "Bearer " + noRole, fiber.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", []string{pkgjwt.RoleAdmin}, "", fiber.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", []string{pkgjwt.RoleAdmin}, "Basic dXNlcjpwYXNz", fiber.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", []string{pkgjwt.RoleAdmin}, "Bearer " + expired, fiber.StatusUnauthorized, "INVALID_TOKEN"},
		{"firmado con otro secret", []string{pkgjwt.RoleAdmin}, "Bearer " + foreign, fiber.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := guardedApp(tc.allowed...).Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, tc.wantCode, resp.StatusCode)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, errorCode(t, resp))
				return
			}
			body := decode[map[string]string](t, resp)
			assert.Equal(t, testUserID, body["user_id"], "el actor sale del token")
			assert.Equal(t, pkgjwt.RoleManager, body["role"])
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Política de roles por ruta
// ──────────────────────────────────────────────────────────────────────────────

// Aprobar y rechazar (productos y traslados) es de admin o manager; registrar ubicaciones
// solo de admin; el resto del flujo de traslados lo opera cualquier usuario autenticado.
func TestRouter_PoliticaDeRoles(t *testing.T) {
	app := buildAPI(t)
	const id = "00000000-0000-0000-0000-0000000000aa"

	cases := []struct {
		method  string
		path    string
		allowed []string
	}{
		{http.MethodPost, "/api/locations", []string{pkgjwt.RoleAdmin}},
		{http.MethodPost, "/api/products/" + id + "/approve", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager}},
		{http.MethodPost, "/api/products/" + id + "/reject", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager}},
		{http.MethodPost, "/api/transfers/" + id + "/approve", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager}},
		{http.MethodPost, "/api/transfers/" + id + "/reject", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager}},
		{http.MethodPost, "/api/transfers/" + id + "/confirm", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager, pkgjwt.RoleStaff}},
		{http.MethodPost, "/api/transfers/" + id + "/ship", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager, pkgjwt.RoleStaff}},
		{http.MethodPost, "/api/transfers/" + id + "/complete", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager, pkgjwt.RoleStaff}},
		{http.MethodPost, "/api/transfers/" + id + "/cancel", []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager, pkgjwt.RoleStaff}},
	}
	roles := []string{pkgjwt.RoleAdmin, pkgjwt.RoleManager, pkgjwt.RoleStaff}

	for _, tc := range cases {
		for _, role := range roles {
			t.Run(tc.method+" "+tc.path+" como "+role, func(t *testing.T) {
				resp := call(t, app, tc.method, tc.path, role, map[string]any{"reason": "prueba de permisos"})
				permitted := false
				for _, r := range tc.allowed {
					permitted = permitted || r == role
				}
				if permitted {
					assert.NotEqual(t, fiber.StatusForbidden, resp.StatusCode, "el rol debe llegar al handler")
					assert.NotEqual(t, fiber.StatusUnauthorized, resp.StatusCode)
					return
				}
				assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
				assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
			})
		}
	}
}

func TestRouter_StaffNoApruebaProducto(t *testing.T) {
	app := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/locations", pkgjwt.RoleAdmin,
		map[string]any{"id": "WH-1", "kind": "warehouse", "name": "Bodega Central"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/products", pkgjwt.RoleStaff, map[string]any{
		"sku": "ARROZ-1K", "name": "Arroz 1kg", "category": "Despensa",
		"cost_price": "3000", "selling_price": "4200", "initial_stock": 40, "location_id": "WH-1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	product := decode[dto.ProductResponse](t, resp)

	// Caso 1: staff intenta aprobar su propio producto
	resp = call(t, app, http.MethodPost, "/api/products/"+product.ID+"/approve", pkgjwt.RoleStaff, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))

	// Caso 2: el producto sigue pendiente y sin saldo
	resp = call(t, app, http.MethodGet, "/api/products/"+product.ID, pkgjwt.RoleStaff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", decode[dto.ProductResponse](t, resp).Status)

	resp = call(t, app, http.MethodGet, "/api/stock/balances/"+product.ID+"/WH-1", pkgjwt.RoleStaff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decode[dto.BalanceResponse](t, resp).Quantity)

	// Caso 3: staff tampoco puede registrar ubicaciones
	resp = call(t, app, http.MethodPost, "/api/locations", pkgjwt.RoleStaff,
		map[string]any{"id": "OUT-9", "kind": "outlet", "name": "Tienda Norte"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// pkg/jwt
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateYParseConservanActorYRol(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleStaff, testIssuer, testExpMin)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, pkgjwt.RoleStaff, role)

	_, err = pkgjwt.Generate("", testUserID, pkgjwt.RoleStaff, testIssuer, testExpMin)
	assert.Error(t, err, "sin secret no se firma")
}
