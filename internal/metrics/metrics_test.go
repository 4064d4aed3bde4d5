package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordExpiredIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(ExpiredContentTotal)
	RecordExpired(0)
	RecordExpired(-2)
	assert.Equal(t, before, testutil.ToFloat64(ExpiredContentTotal))

	RecordExpired(3)
	assert.Equal(t, before+3, testutil.ToFloat64(ExpiredContentTotal))
}

func TestHandlerServesExpiredCounter(t *testing.T) {
	RecordExpired(2)

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tuskfish_expired_content_total")
}
