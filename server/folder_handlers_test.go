package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFolder(t *testing.T, e *testEnv, token string, payload map[string]any) map[string]any {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/folders", payload, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeMap(t, rec)
}

func TestFoldersCRUD(t *testing.T) {
	e := newTestEnv(t)
	token := e.signupAndLogin(t, "alice")

	rec := e.doJSON(t, http.MethodPost, "/api/folders", map[string]any{"folder_name": "  "}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "folder_name required", decodeMap(t, rec)["error"])

	parent := createFolder(t, e, token, map[string]any{"folder_name": "Parent"})
	child := createFolder(t, e, token, map[string]any{"folder_name": "Child", "parent_folder_id": parent["folder_id"]})
	assert.EqualValues(t, parent["folder_id"], child["parent_folder_id"])

	list := decodeList(t, performRequest(e.handler, http.MethodGet, "/api/folders", nil, token, ""))
	require.Len(t, list, 2)
	assert.Equal(t, "Child", list[0]["folder_name"])

	childPath := fmt.Sprintf("/api/folders/%v", child["folder_id"])
	rec = e.doJSON(t, http.MethodPut, childPath, map[string]any{"folder_name": "Renamed"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	renamed := decodeMap(t, rec)
	assert.Equal(t, "Renamed", renamed["folder_name"])
	assert.Nil(t, renamed["parent_folder_id"])

	rec = performRequest(e.handler, http.MethodGet, childPath, nil, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusNoContent, performRequest(e.handler, http.MethodDelete, childPath, nil, token, "").Code)
	rec = performRequest(e.handler, http.MethodGet, childPath, nil, token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Folder not found", decodeMap(t, rec)["error"])
}

func TestFolderParentRules(t *testing.T) {
	e := newTestEnv(t)
	alice := e.signupAndLogin(t, "alice")
	bob := e.signupAndLogin(t, "bob")

	a := createFolder(t, e, alice, map[string]any{"folder_name": "A"})
	b := createFolder(t, e, alice, map[string]any{"folder_name": "B", "parent_folder_id": a["folder_id"]})
	c := createFolder(t, e, alice, map[string]any{"folder_name": "C", "parent_folder_id": b["folder_id"]})
	bobs := createFolder(t, e, bob, map[string]any{"folder_name": "Bob"})

	aPath := fmt.Sprintf("/api/folders/%v", a["folder_id"])

	rec := e.doJSON(t, http.MethodPut, aPath, map[string]any{"folder_name": "A", "parent_folder_id": a["folder_id"]}, alice)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "a folder cannot be its own parent", decodeMap(t, rec)["error"])

	rec = e.doJSON(t, http.MethodPut, aPath, map[string]any{"folder_name": "A", "parent_folder_id": c["folder_id"]}, alice)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.doJSON(t, http.MethodPut, aPath, map[string]any{"folder_name": "A", "parent_folder_id": bobs["folder_id"]}, alice)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.doJSON(t, http.MethodPost, "/api/folders", map[string]any{"folder_name": "X", "parent_folder_id": bobs["folder_id"]}, alice)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// moving a leaf under a sibling branch is fine
	cPath := fmt.Sprintf("/api/folders/%v", c["folder_id"])
	rec = e.doJSON(t, http.MethodPut, cPath, map[string]any{"folder_name": "C", "parent_folder_id": a["folder_id"]}, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(e.handler, http.MethodDelete, fmt.Sprintf("/api/folders/%v", bobs["folder_id"]), nil, alice, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
