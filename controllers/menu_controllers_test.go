package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/tastehub/models"
)

func TestMenuPublicRoutes(t *testing.T) {
	env := newTestEnv(t)

	var items []models.MenuItem
	w := env.do(t, http.MethodGet, "/menu", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	require.Len(t, items, 2)
	// urut kategori lalu nama: drinks sebelum main-course
	assert.Equal(t, "Mango Lassi", items[0].Name)

	w = env.do(t, http.MethodGet, "/menu?category=drinks", nil, "")
	decode(t, w, &items)
	assert.Len(t, items, 1)

	w = env.do(t, http.MethodGet, "/menu?category=snacks", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/menu/"+env.pizza.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/menu/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuAdminCRUD(t *testing.T) {
	env := newTestEnv(t)
	staff := env.token(t, "owner", models.RoleStoreOwner)

	var created models.MenuItem
	w := env.do(t, http.MethodPost, "/admin/menu", map[string]interface{}{
		"name": "Paneer Tikka", "price": 249, "category": "starters", "description": "smoky",
	}, staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Available)

	invalid := []map[string]interface{}{
		{"name": "", "price": 10, "category": "starters"},
		{"name": "Free", "price": 0, "category": "starters"},
		{"name": "Soup", "price": 10, "category": "soups"},
	}
	for _, body := range invalid {
		w := env.do(t, http.MethodPost, "/admin/menu", body, staff)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	var updated models.MenuItem
	w = env.do(t, http.MethodPut, "/admin/menu/"+created.ID, map[string]interface{}{
		"name": "Paneer Tikka", "price": 269, "category": "starters",
	}, staff)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &updated)
	assert.Equal(t, "269", updated.Price.String())

	w = env.do(t, http.MethodPatch, "/admin/menu/"+created.ID+"/availability", map[string]bool{"available": false}, staff)
	decode(t, w, &updated)
	assert.False(t, updated.Available)

	var available []models.MenuItem
	w = env.do(t, http.MethodGet, "/menu?available=true", nil, "")
	decode(t, w, &available)
	assert.Len(t, available, 2)

	w = env.do(t, http.MethodDelete, "/admin/menu/"+created.ID, nil, staff)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/admin/menu/"+created.ID, nil, staff)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
