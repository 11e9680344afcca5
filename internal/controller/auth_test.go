package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/coursehub/internal/model"
)

const testSecret = "test-secret"

func authTestApp(t *testing.T, handlers ...fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New()
	chain := append([]fiber.Handler{AuthMiddleware(testSecret)}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		identity := CurrentIdentity(c)
		return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{
			"user_id": identity.UserID,
			"name":    identity.FullName,
		})
	})
	app.Get("/protected", chain...)
	return app
}

func TestAuthRoundTrip(t *testing.T) {
	identity := model.Identity{
		UserID:   7,
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Roles:    []model.Role{model.RoleTeacher},
	}
	token, err := GenerateToken(testSecret, identity)
	require.NoError(t, err)

	app := authTestApp(t)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	app := authTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	token, err := GenerateToken("another-secret", model.Identity{UserID: 7, FullName: "x", Email: "x@x"})
	require.NoError(t, err)

	app := authTestApp(t)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleBlocksStudents(t *testing.T) {
	token, err := GenerateToken(testSecret, model.Identity{
		UserID:   9,
		FullName: "Sam Student",
		Email:    "sam@example.com",
	})
	require.NoError(t, err)

	app := authTestApp(t, RequireRole(model.RoleTeacher, model.RoleAdministrator))
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRolePassesTeachers(t *testing.T) {
	token, err := GenerateToken(testSecret, model.Identity{
		UserID:   7,
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Roles:    []model.Role{model.RoleTeacher},
	})
	require.NoError(t, err)

	app := authTestApp(t, RequireRole(model.RoleTeacher, model.RoleAdministrator))
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
