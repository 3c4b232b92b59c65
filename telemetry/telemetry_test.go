package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdr-lighting/hdr"
)

func TestNewSample(t *testing.T) {
	st := hdr.IlluminationState{
		Operator:        hdr.OperatorDrago,
		Exposure:        1.5,
		DynamicExposure: true,
		AvgLuminance:    0.3,
		MinLuminance:    0.01,
		MaxLuminance:    9,
	}
	s := NewSample(42, &st)
	assert.Equal(t, Sample{
		Frame: 42, Operator: "DRAGO", Dynamic: true, Bloom: false,
		Exposure: 1.5, Avg: 0.3, Min: 0.01, Max: 9,
	}, s)
}

func TestPublishKeepsOnlyLatest(t *testing.T) {
	h := NewHub(zerolog.Nop())
	_, ok := h.Last()
	assert.False(t, ok)

	for i := uint64(1); i <= 5; i++ {
		h.Publish(Sample{Frame: i})
	}
	assert.Len(t, h.updates, 1)
	got := <-h.updates
	assert.Equal(t, uint64(5), got.Frame)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(5), last.Frame)
}

func TestHealth(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.Publish(Sample{Frame: 7, Operator: "REINHARD"})

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK     bool   `json:"ok"`
		Sample Sample `json:"sample"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, uint64(7), body.Sample.Frame)
	assert.Equal(t, "REINHARD", body.Sample.Operator)
}

func TestWebsocketStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(zerolog.Nop())
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	go h.Run(ctx)

	h.Publish(Sample{Frame: 1})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var s Sample
	require.NoError(t, conn.ReadJSON(&s))
	assert.Equal(t, uint64(1), s.Frame, "latest sample on connect")

	h.Publish(Sample{Frame: 2, Exposure: 0.75})
	for s.Frame < 2 {
		require.NoError(t, conn.ReadJSON(&s))
	}
	assert.Equal(t, uint64(2), s.Frame)
	assert.Equal(t, float32(0.75), s.Exposure)
}
