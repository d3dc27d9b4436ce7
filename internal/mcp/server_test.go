package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/geocalc/internal/analytics"
	"github.com/khanglvm/geocalc/internal/calc"
	"github.com/khanglvm/geocalc/internal/clock"
	"github.com/khanglvm/geocalc/internal/shapes"
	"github.com/khanglvm/geocalc/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := analytics.NewStore(storage.NewMemoryStorage(), analytics.Options{
		Clock:  clock.NewFake(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)),
		Logger: zerolog.Nop(),
	})
	c := calc.New(calc.Options{Store: store, Logger: zerolog.Nop(), SessionID: "test"})
	return NewServer(c, Options{Version: "1.2.3", Logger: zerolog.Nop()})
}

func call(t *testing.T, s *Server, method string, params interface{}) *MCPResponse {
	t.Helper()
	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := s.handleRequest(context.Background(), data)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "2.0", resp.JSONRPC)
	return resp
}

// toolText extracts the text content of a successful tools/call response.
func toolText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	return content[0]["text"].(string)
}

func TestInitialize(t *testing.T) {
	resp := call(t, newTestServer(t), "initialize", nil)

	result := resp.Result.(map[string]interface{})
	assert.Equal(t, protocolVersion, result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "geocalc", info["name"])
	assert.Equal(t, "1.2.3", info["version"])
}

func TestHandleToolsList(t *testing.T) {
	resp := call(t, newTestServer(t), "tools/list", nil)

	tools := resp.Result.(map[string]interface{})["tools"].([]map[string]interface{})
	names := map[string]bool{}
	for _, tool := range tools {
		names[tool["name"].(string)] = true
		assert.Contains(t, tool, "inputSchema")
		assert.NotEmpty(t, tool["description"])
	}
	assert.Equal(t, map[string]bool{"geometry_compute": true, "geometry_stats": true, "geometry_shapes": true}, names)
}

func TestComputeMatchesLibrary(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want shapes.Shape
	}{
		{
			name: "positional",
			args: map[string]interface{}{"shape": "rectangular_prism", "values": []float64{2, 3, 4}},
			want: shapes.RectangularPrism{Length: 2, Width: 3, Height: 4},
		},
		{
			name: "named",
			args: map[string]interface{}{"shape": "rectangle", "length": 2, "width": 3},
			want: shapes.Rectangle{Length: 2, Width: 3},
		},
		{
			name: "alias",
			args: map[string]interface{}{"shape": "ball", "radius": 1.5},
			want: shapes.Sphere{Radius: 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, s, "tools/call", map[string]interface{}{"name": "geometry_compute", "arguments": tt.args})

			var got computeReply
			require.NoError(t, json.Unmarshal([]byte(toolText(t, resp)), &got))

			want, err := shapes.Compute(tt.want)
			require.NoError(t, err)
			assert.Equal(t, want.Kind, got.Kind)
			assert.Equal(t, want.Area, got.Area)
			assert.Equal(t, want.Perimeter, got.Perimeter)
			assert.Equal(t, want.Volume, got.Volume)
			assert.Equal(t, want.SurfaceArea, got.SurfaceArea)
			assert.NotZero(t, got.RecordID)
			assert.Empty(t, got.LogError)
		})
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	for name, args := range map[string]map[string]interface{}{
		"degenerate":    {"shape": "triangle", "values": []float64{1, 2, 3}},
		"negative":      {"shape": "circle", "radius": -2},
		"missing shape": {"values": []float64{1}},
		"unknown shape": {"shape": "hexagon", "values": []float64{1}},
		"wrong arity":   {"shape": "cube", "values": []float64{1, 2}},
		"missing param": {"shape": "rectangle", "length": 2},
		"bad values":    {"shape": "square", "values": "four"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := call(t, s, "tools/call", map[string]interface{}{"name": "geometry_compute", "arguments": args})
			require.NotNil(t, resp.Error)
			assert.Equal(t, codeInvalidParams, resp.Error.Code)
		})
	}

	stats := call(t, s, "tools/call", map[string]interface{}{"name": "geometry_stats", "arguments": map[string]interface{}{}})
	assert.Contains(t, toolText(t, stats), `"total_calculations": 0`)
}

func TestStatsAfterCompute(t *testing.T) {
	s := newTestServer(t)

	for _, r := range []float64{1, 2} {
		call(t, s, "tools/call", map[string]interface{}{
			"name":      "geometry_compute",
			"arguments": map[string]interface{}{"shape": "circle", "radius": r},
		})
	}

	resp := call(t, s, "tools/call", map[string]interface{}{
		"name":      "geometry_stats",
		"arguments": map[string]interface{}{"window_days": 7},
	})

	var stats analytics.AggregatedStats
	require.NoError(t, json.Unmarshal([]byte(toolText(t, resp)), &stats))
	assert.Equal(t, 2, stats.TotalCalculations)
	assert.Equal(t, shapes.KindCircle, stats.MostPopularShape)
	assert.Equal(t, 2, stats.DimensionFrequency[shapes.TwoD])
	assert.Equal(t, 7, stats.WindowDays)

	bad := call(t, s, "tools/call", map[string]interface{}{
		"name":      "geometry_stats",
		"arguments": map[string]interface{}{"window_days": 1.5},
	})
	require.NotNil(t, bad.Error)
	assert.Equal(t, codeInvalidParams, bad.Error.Code)
}

func TestShapesTool(t *testing.T) {
	resp := call(t, newTestServer(t), "tools/call", map[string]interface{}{"name": "geometry_shapes"})

	var infos []shapeInfo
	require.NoError(t, json.Unmarshal([]byte(toolText(t, resp)), &infos))
	require.Len(t, infos, len(shapes.Kinds()))
	assert.Equal(t, "rectangle", infos[0].Name)
	assert.Equal(t, []string{"length", "width"}, infos[0].Params)
}

func TestJSONRPCErrorHandling(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, "invalid/method", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
	assert.Equal(t, float64(1), resp.ID)

	resp = call(t, s, "tools/call", map[string]interface{}{"name": "unknown_tool", "arguments": map[string]interface{}{}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)

	notification, err := s.handleRequest(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	assert.Nil(t, notification)

	_, err = s.handleRequest(context.Background(), []byte(`{not json`))
	assert.Error(t, err)
}

func TestRunOverStreams(t *testing.T) {
	s := newTestServer(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"geometry_compute","arguments":{"shape":"square","side":4}}}`,
		`garbage`,
		`{"jsonrpc":"2.0","id":"three","method":"tools/list"}`,
	}, "\n")

	var out strings.Builder
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input), &out))

	var responses []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}

	require.Len(t, responses, 4)
	assert.Equal(t, float64(1), responses[0]["id"])
	assert.Equal(t, float64(2), responses[1]["id"])
	assert.Contains(t, responses[1]["result"].(map[string]interface{})["content"].([]interface{})[0].(map[string]interface{})["text"], `"area": 16`)
	assert.Equal(t, float64(codeParseError), responses[2]["error"].(map[string]interface{})["code"])
	assert.Equal(t, "three", responses[3]["id"])
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, r, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
