package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khanglvm/geocalc/internal/calc"
	"github.com/khanglvm/geocalc/internal/shapes"
)

var errInvalidArgument = errors.New("invalid argument")

func isInvalidArgument(err error) bool {
	return errors.Is(err, errInvalidArgument) || calc.IsRejection(err)
}

func toolDefinitions() []map[string]interface{} {
	names := make([]string, 0, len(shapes.Kinds()))
	for _, k := range shapes.Kinds() {
		names = append(names, k.String())
	}

	return []map[string]interface{}{
		{
			"name": "geometry_compute",
			"description": `Compute the metrics of a 2D or 3D shape.

2D shapes return area and perimeter; 3D shapes return volume and surface area.
Pass the dimensions either positionally in "values" or by name
(e.g. {"shape": "rectangle", "length": 2, "width": 3}).

The calculation is recorded in the history used by geometry_stats.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"shape": map[string]interface{}{
						"type":        "string",
						"description": "Shape name",
						"enum":        names,
					},
					"values": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Dimensions in the order listed by geometry_shapes",
					},
				},
				"required":             []string{"shape"},
				"additionalProperties": map[string]interface{}{"type": "number"},
			},
		},
		{
			"name": "geometry_stats",
			"description": `Aggregated statistics over recorded calculations: totals, counts per
shape and dimension, hour and day histograms, average duration, the most
popular shape and the most recent records.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"window_days": map[string]interface{}{
						"type":        "integer",
						"description": "Only count the trailing N days (0 = all time)",
					},
				},
			},
		},
		{
			"name":        "geometry_shapes",
			"description": "List the supported shapes with their dimension and parameter names.",
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// computeReply is the geometry_compute text payload.
type computeReply struct {
	shapes.Result
	RecordID int64  `json:"record_id,omitempty"`
	Queued   bool   `json:"queued,omitempty"`
	LogError string `json:"log_error,omitempty"`
}

func (s *Server) execCompute(ctx context.Context, args map[string]interface{}) (string, error) {
	shape, err := shapeFromArguments(args)
	if err != nil {
		return "", err
	}

	out, err := s.calc.Calculate(ctx, shape)
	if err != nil {
		return "", err
	}

	reply := computeReply{Result: out.Result, RecordID: out.Record.ID, Queued: out.Queued}
	if out.LogErr != nil {
		reply.LogError = out.LogErr.Error()
	}
	return marshal(reply)
}

func (s *Server) execStats(ctx context.Context, args map[string]interface{}) (string, error) {
	window := 0
	if raw, ok := args["window_days"]; ok {
		v, ok := raw.(float64)
		if !ok || v != float64(int(v)) {
			return "", fmt.Errorf("%w: window_days must be an integer", errInvalidArgument)
		}
		window = int(v)
	}

	stats, err := s.calc.Stats(ctx, window)
	if err != nil {
		return "", err
	}
	return marshal(stats)
}

type shapeInfo struct {
	Name      string           `json:"name"`
	Dimension shapes.Dimension `json:"dimension"`
	Params    []string         `json:"params"`
}

func (s *Server) execShapes() (string, error) {
	infos := make([]shapeInfo, 0, len(shapes.Kinds()))
	for _, k := range shapes.Kinds() {
		infos = append(infos, shapeInfo{Name: k.String(), Dimension: k.Dimension(), Params: k.ParamNames()})
	}
	return marshal(infos)
}

// shapeFromArguments accepts either "values" or one argument per parameter name.
func shapeFromArguments(args map[string]interface{}) (shapes.Shape, error) {
	name, _ := args["shape"].(string)
	if name == "" {
		return nil, fmt.Errorf("%w: shape is required", errInvalidArgument)
	}
	kind, err := shapes.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgument, err)
	}

	var values []float64
	if raw, ok := args["values"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: values must be an array of numbers", errInvalidArgument)
		}
		for i, item := range list {
			v, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: values[%d] is not a number", errInvalidArgument, i)
			}
			values = append(values, v)
		}
	} else {
		for _, param := range kind.ParamNames() {
			v, ok := args[param].(float64)
			if !ok {
				return nil, fmt.Errorf("%w: %s needs a numeric %q", errInvalidArgument, kind, param)
			}
			values = append(values, v)
		}
	}

	shape, err := shapes.New(kind, values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgument, err)
	}
	return shape, nil
}

func marshal(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
