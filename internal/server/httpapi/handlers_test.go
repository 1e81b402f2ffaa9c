package httpapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/models"
)

func registerBody(userID string) map[string]any {
	return map[string]any{
		"userId":       userID,
		"email":        userID + "@example.com",
		"accountName":  "acme",
		"friendlyName": "Friendly " + userID,
		"password":     "s3cret",
	}
}

func TestRegisterEndpoint_Success(t *testing.T) {
	env := newTestServer(t, func(cfg *config.Config) { cfg.BypassUserActivation = true })

	w := env.do(http.MethodPost, "/v1/register", registerBody("u1"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Success", body["status"])
	assert.Equal(t, "1", body["accountId"])
}

func TestRegisterEndpoint_DuplicateUserID(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "pw")

	w := env.do(http.MethodPost, "/v1/register", registerBody("alice"), nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Failed", body["status"])
	assert.Equal(t, msgInvalidUserID, body["message"])
}

func TestRegisterEndpoint_InvalidBody(t *testing.T) {
	env := newTestServer(t, nil)

	w := env.do(http.MethodPost, "/v1/register", map[string]any{"userId": "u1"}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Failed", decodeBody(t, w)["status"])
}

func TestAuthenticateEndpoint_Success(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "s3cret")

	w := env.do(http.MethodPost, "/v1/authenticate",
		map[string]any{"accountId": "1001", "userId": "alice", "password": "s3cret"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	claims, err := env.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
}

func TestAuthenticateEndpoint_UniformFailureBody(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "s3cret")

	wrongPassword := env.do(http.MethodPost, "/v1/authenticate",
		map[string]any{"accountId": "1001", "userId": "alice", "password": "wrong"}, nil)
	missingUser := env.do(http.MethodPost, "/v1/authenticate",
		map[string]any{"accountId": "1001", "userId": "ghost", "password": "s3cret"}, nil)

	require.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	require.Equal(t, http.StatusBadRequest, missingUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), missingUser.Body.String(),
		"failure responses must be byte-identical across causes")
	assert.Equal(t, msgAuthenticationFailed, decodeBody(t, wrongPassword)["message"])
}

func TestPublicSignatureEndpoint(t *testing.T) {
	env := newTestServer(t, nil)

	w := env.do(http.MethodGet, "/v1/publicSignature", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test-signing-secret", decodeBody(t, w)["signature"])
}

func TestPublicSignatureEndpoint_MissingKeyMaterial(t *testing.T) {
	env := newTestServer(t, func(cfg *config.Config) { cfg.PublicKeyPath = "" })

	w := env.do(http.MethodGet, "/v1/publicSignature", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "{}", w.Body.String(), "key errors must not leak outward")
}

func TestGetConfigurationEndpoint_NoDocument(t *testing.T) {
	env := newTestServer(t, nil)

	w := env.do(http.MethodGet, "/v1/configuration", nil, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetConfigurationEndpoint_SelectsBlock(t *testing.T) {
	env := newTestServer(t, nil)
	require.NoError(t, env.repo.UpdateConfiguration(context.Background(), &models.Configuration{
		Internal: models.ConfigBlock{IdentityURL: "http://10.0.0.1:8888"},
		External: models.ConfigBlock{IdentityURL: "https://id.example.com"},
	}))

	local := env.do(http.MethodGet, "/v1/configuration", nil, map[string]string{"X-Forwarded-For": "127.0.0.1"})
	require.Equal(t, http.StatusOK, local.Code)
	assert.Equal(t, "http://10.0.0.1:8888", decodeBody(t, local)["identityUrl"])

	external := env.do(http.MethodGet, "/v1/configuration", nil, map[string]string{"X-Forwarded-For": "203.0.113.5"})
	require.Equal(t, http.StatusOK, external.Code)
	assert.Equal(t, "https://id.example.com", decodeBody(t, external)["identityUrl"])
}

func TestUpdateConfigurationEndpoint_NonRootGets404(t *testing.T) {
	env := newTestServer(t, nil)
	token := env.tokenFor(t, &auth.Claims{AccountID: "1001", UserID: "alice"})

	w := env.do(http.MethodPost, "/v1/configuration",
		map[string]any{"internal": map[string]any{}, "external": map[string]any{}},
		map[string]string{tokenHeader: token})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestUpdateConfigurationEndpoint_Root(t *testing.T) {
	env := newTestServer(t, nil)
	token := env.tokenFor(t, &auth.Claims{AccountID: models.SystemAccountID, UserID: "admin"})

	w := env.do(http.MethodPost, "/v1/configuration",
		map[string]any{
			"internal": map[string]any{"identityUrl": "http://10.0.0.1:8888"},
			"external": map[string]any{"identityUrl": "https://id.example.com"},
		},
		map[string]string{tokenHeader: token})

	require.Equal(t, http.StatusOK, w.Code)

	stored, err := env.repo.Configuration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://id.example.com", stored.External.IdentityURL)
}

func TestUpdateUserEndpoint_Success(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "s3cret")
	token := env.tokenFor(t, &auth.Claims{AccountID: "1001", UserID: "alice"})

	w := env.do(http.MethodPost, "/v1/updateUser",
		map[string]any{"email": "new@example.com"},
		map[string]string{tokenHeader: token})

	require.Equal(t, http.StatusOK, w.Code)

	user, err := env.repo.UserByID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestUpdateUserEndpoint_NoFieldsUniformMessage(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "s3cret")
	token := env.tokenFor(t, &auth.Claims{AccountID: "1001", UserID: "alice"})

	w := env.do(http.MethodPost, "/v1/updateUser", map[string]any{}, map[string]string{tokenHeader: token})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgUpdateUserFailed, decodeBody(t, w)["message"])
}

func TestImpersonateEndpoint_NonRoot(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "s3cret")
	token := env.tokenFor(t, &auth.Claims{AccountID: "1001", UserID: "alice"})

	w := env.do(http.MethodPost, "/v1/impersonate",
		map[string]any{"accountId": "1001", "userId": "alice"},
		map[string]string{tokenHeader: token})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgImpersonationFailed, decodeBody(t, w)["message"])
}

func TestImpersonateEndpoint_Root(t *testing.T) {
	env := newTestServer(t, nil)
	env.seedUser(t, "1001", "alice", "s3cret")
	token := env.tokenFor(t, &auth.Claims{AccountID: models.SystemAccountID, UserID: "admin"})

	w := env.do(http.MethodPost, "/v1/impersonate",
		map[string]any{"accountId": "1001"},
		map[string]string{tokenHeader: token})

	require.Equal(t, http.StatusOK, w.Code)
	issued, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, issued)

	claims, err := env.tokens.Verify(issued)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID, "omitted userId targets the account owner")
	assert.Equal(t, "admin", claims.ImpersonatedBy)
}
