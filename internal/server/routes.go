package server

import (
	"net/http"

	"github.com/ironsheep/equation-board/internal/api"
)

// Endpoint describes one route for the catalog served at /api.
type Endpoint struct {
	Name        string                 `json:"name"`
	Method      string                 `json:"method"`
	Path        string                 `json:"path"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// Catalog is the response of the catalog endpoint.
type Catalog struct {
	api.Status
	Endpoints []Endpoint `json:"endpoints"`
}

// rangeSchema is a [min, max] pair.
var rangeSchema = map[string]interface{}{
	"type":     "array",
	"items":    map[string]interface{}{"type": "number"},
	"minItems": 2,
	"maxItems": 2,
}

var scopeSchema = map[string]interface{}{
	"type":                 "object",
	"description":          "Variable values, e.g. {\"x\": 0}",
	"additionalProperties": map[string]interface{}{"type": "number"},
}

// Endpoints returns the routes served by Handler.
func Endpoints() []Endpoint {
	return []Endpoint{
		{
			Name:        "solve",
			Method:      http.MethodPost,
			Path:        api.PathSolve,
			Description: "Evaluate an equation such as \"y = 2 + 3\" or a bare expression and return its numeric value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"equation": map[string]interface{}{
						"type":        "string",
						"description": "Equation or expression to evaluate",
					},
					"scope": scopeSchema,
				},
				"required": []string{"equation"},
			},
		},
		{
			Name:        "graph",
			Method:      http.MethodPost,
			Path:        api.PathGraph,
			Description: "Sample an expression over the range of its single independent variable. Undefined points are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expression": map[string]interface{}{
						"type":        "string",
						"description": "Right-hand side, e.g. \"(x-1)*(x-4)\"",
					},
					"dependentVariable": map[string]interface{}{
						"type":        "string",
						"description": "Left-hand side name. Default \"y\"",
						"default":     "y",
					},
					"scope": scopeSchema,
					"ranges": map[string]interface{}{
						"type":                 "object",
						"description":          "Sampling range per variable. Default [-10, 10]",
						"additionalProperties": rangeSchema,
					},
				},
				"required": []string{"expression"},
			},
		},
		{
			Name:        "extract-equation",
			Method:      http.MethodPost,
			Path:        api.PathExtract,
			Description: "Recognize a handwritten equation in an image and return it as an expression, dependent variable, scope and ranges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image": map[string]interface{}{
						"type":        "string",
						"description": "PNG, JPEG, GIF or WebP image as a data URL or bare base64",
					},
				},
				"required": []string{"image"},
			},
		},
		{
			Name:        "health",
			Method:      http.MethodGet,
			Path:        api.PathHealth,
			Description: "Report the server version and the recognizer in use.",
		},
		{
			Name:        "catalog",
			Method:      http.MethodGet,
			Path:        api.PathCatalog,
			Description: "List the available endpoints.",
		},
		{
			Name:        "session",
			Method:      http.MethodGet,
			Path:        api.PathSession,
			Description: "Open a websocket whiteboard session driving capture, solve, graph and voice commands.",
		},
	}
}
