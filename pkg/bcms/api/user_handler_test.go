package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

func TestUserHandler_AdminCRUD(t *testing.T) {
	router, repo := setupRouterTest(t)
	_, adminToken := adminViaAPI(t, router, repo, "admin@example.com")

	w := doJSON(t, router, http.MethodPost, "/users", adminToken, map[string]interface{}{
		"name":     "Created User",
		"email":    "created@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope(t, w)
	var created bcms.User
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "created@example.com", created.Email)
	assert.False(t, created.Admin)

	w = doJSON(t, router, http.MethodGet, "/users/"+created.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/users/"+created.ID.String(), adminToken, map[string]string{
		"name": "Renamed User",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env = decodeEnvelope(t, w)
	var updated bcms.User
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Renamed User", updated.Name)
	assert.Equal(t, "created@example.com", updated.Email, "unset fields stay unchanged")

	w = doJSON(t, router, http.MethodDelete, "/users/"+created.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/users/"+created.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_Create_ValidationError(t *testing.T) {
	router, repo := setupRouterTest(t)
	_, adminToken := adminViaAPI(t, router, repo, "admin@example.com")

	w := doJSON(t, router, http.MethodPost, "/users", adminToken, map[string]string{
		"name":  "No Password",
		"email": "nopass@example.com",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decodeEnvelope(t, w)
	assert.NotEmpty(t, env.Errors["password"])
}

func TestUserHandler_List(t *testing.T) {
	router, repo := setupRouterTest(t)
	_, adminToken := adminViaAPI(t, router, repo, "admin@example.com")
	registerViaAPI(t, router, "first@example.com")
	registerViaAPI(t, router, "second@example.com")

	w := doJSON(t, router, http.MethodGet, "/users?per_page=2", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Total, "admin plus two registered users")
	assert.Equal(t, 2, env.Meta.TotalPages)

	var users []*bcms.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)
}

func TestUserHandler_Search(t *testing.T) {
	router, repo := setupRouterTest(t)
	_, adminToken := adminViaAPI(t, router, repo, "admin@example.com")
	registerViaAPI(t, router, "alice@acme.com")
	registerViaAPI(t, router, "bob@acme.com")
	registerViaAPI(t, router, "carol@other.com")

	w := doJSON(t, router, http.MethodGet, "/users/search?email=acme", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var users []*bcms.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice@acme.com", users[0].Email)
	assert.Equal(t, "bob@acme.com", users[1].Email)
}

func TestUserHandler_Search_MissingQuery(t *testing.T) {
	router, repo := setupRouterTest(t)
	_, adminToken := adminViaAPI(t, router, repo, "admin@example.com")

	w := doJSON(t, router, http.MethodGet, "/users/search", adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decodeEnvelope(t, w)
	assert.NotEmpty(t, env.Errors["email"])
}
