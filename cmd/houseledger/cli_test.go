package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	houseDataDir = t.TempDir()
	statePath = filepath.Join(houseDataDir, "state.json")

	_, err := getState()
	require.Error(t, err)

	require.NoError(t, setState(map[string]string{"daemon": "http://localhost:8081"}))
	require.NoError(t, setState(map[string]string{"foo": "bar"}))

	state, err := getState()
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"daemon": "http://localhost:8081",
		"foo":    "bar",
	}, state)
}

func TestDaemonClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/v1/accounts/2/spend":
				var body map[string]interface{}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if body["amount_btc"] != "1.4" {
					w.WriteHeader(http.StatusUnprocessableEntity)
					w.Write([]byte(`{"error":"insufficient account"}`))
					return
				}
				w.Write([]byte(`{"outcome":"pending"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		},
	))
	defer server.Close()

	houseDataDir = t.TempDir()
	statePath = filepath.Join(houseDataDir, "state.json")
	require.NoError(t, setState(map[string]string{"daemon": server.URL + "/"}))

	client, err := getDaemonClient()
	require.NoError(t, err)

	resp, err := client.post("/v1/accounts/2/spend", map[string]interface{}{
		"amount_btc": "1.4",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"outcome":"pending"}`, string(resp))

	_, err = client.post("/v1/accounts/2/spend", map[string]interface{}{
		"amount_btc": "3",
	})
	require.EqualError(t, err, "insufficient account (status 422)")

	_, err = client.get("/v1/unknown")
	require.EqualError(t, err, "request failed with status 404")
}
