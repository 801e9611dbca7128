package crmclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/hscrm/pkg/crmclient"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &hscrm.Config{
			APIEndpoint: "api.example.com/",
			AccessToken: "pat-na1-test",
		}

		client, err := crmclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "api.example.com/", config.APIEndpoint)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := crmclient.New(context.Background(), nil)
		require.ErrorIs(t, err, hscrm.ErrConfigRequired)
	})

	t.Run("requires access token", func(t *testing.T) {
		t.Parallel()

		_, err := crmclient.New(context.Background(), &hscrm.Config{})
		require.ErrorIs(t, err, hscrm.ErrAccessTokenRequired)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		endpoint string
		want     string
	}{
		{"", "https://api.hubapi.com"},
		{"api.hubapi.com", "https://api.hubapi.com"},
		{"https://api.hubapi.com/", "https://api.hubapi.com"},
		{"http://localhost:8080//", "http://localhost:8080"},
		{"  https://api.example.com  ", "https://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, crmclient.NormalizeEndpoint(tt.endpoint))
		})
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := crmclient.NewWithToken(context.Background(), "https://api.example.com", "pat-na1-test")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithPipeline(t *testing.T) {
	t.Parallel()

	client, err := crmclient.NewWithPipeline(context.Background(), "pat-na1-test", "default")
	require.NoError(t, err)

	pipelineID, err := client.Pipelines().PipelineID()
	require.NoError(t, err)
	assert.Equal(t, "default", pipelineID)
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/crm/v3/pipelines/deals/default/stages":
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"results":[{"id":"closedwon","displayOrder":6},{"id":"appointmentscheduled","displayOrder":0}]}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := crmclient.New(context.Background(), &hscrm.Config{
		APIEndpoint: server.URL,
		AccessToken: "pat-na1-test",
		PipelineID:  "default",
	})
	require.NoError(t, err)

	stage, err := client.Pipelines().DefaultDealStage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "appointmentscheduled", stage.ID)
}
