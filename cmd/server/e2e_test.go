package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/client"
	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-linkbio/pkg/app"
	"github.com/wadjakorntonsri/go-linkbio/pkg/config"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/reorder"
)

func TestIntegration(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:      "file:" + filepath.Join(t.TempDir(), "e2e.sqlite"),
		JWTSecret:        "e2e-secret",
		UniqueOrderIndex: true,
		TxMaxRetries:     3,
		TxRetryBackoff:   10 * time.Millisecond,
		OversizeFactor:   2,
	}
	a, err := app.New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err, "failed to init app")
	defer a.Repo.Close()

	server := httptest.NewServer(a.Handler)
	defer server.Close()

	token, _, err := handler.IssueToken([]byte(cfg.JWTSecret), "owner@example.com", time.Hour)
	require.NoError(t, err)
	cookie := &http.Cookie{Name: "auth_token", Value: token}
	httpClient := server.Client()

	post := func(path string, payload any) *http.Response {
		body, _ := json.Marshal(payload)
		req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		resp, err := httpClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Create three links; each is appended at the end.
	for _, title := range []string{"A", "B", "C"} {
		resp := post("/api/v1/links", map[string]string{
			"original_url": "https://example.com/" + title,
			"title":        title,
		})
		var created domain.Link
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	api := client.New(server.URL, token, httpClient)
	ctx := context.Background()

	links, err := api.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, []string{"A", "B", "C"}, titles(links))

	// Drag C to the top through the debounced coordinator.
	session := reorder.NewSession(20*time.Millisecond, reorder.MoveOnDrop(ctx, api, func(d reorder.Drop, err error) {
		t.Errorf("move failed: %v", err)
	}))
	defer session.Cleanup()
	dest := 0
	session.Start()
	session.Move(reorder.Update{LinkID: links[2].ID, Source: 2, Over: 1})
	session.End(reorder.Drop{LinkID: links[2].ID, Source: 2, Destination: &dest})

	require.Eventually(t, func() bool {
		got, err := api.ListLinks(ctx)
		return err == nil && len(got) == 3 && got[0].Title == "C"
	}, 2*time.Second, 10*time.Millisecond)

	links, err = api.ListLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(links))
	for i, l := range links {
		assert.Equal(t, i, l.Order)
	}

	// Out of range moves are rejected and leave the sequence alone.
	err = api.MoveLink(ctx, links[0].ID, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	report, err := api.Diagnose(ctx)
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.True(t, report.Consistent)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, 3, report.TotalItems)

	result, err := api.Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RepairResult{Success: true, ItemCount: 3, Changed: 0}, *result)

	// Unauthenticated API calls are rejected.
	resp, err := httpClient.Get(server.URL + "/api/v1/links")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func titles(links []domain.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Title
	}
	return out
}
