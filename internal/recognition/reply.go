package recognition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/equation-board/internal/sampler"
)

// reply is the JSON object the vision model is instructed to return.
type reply struct {
	Error             string                   `json:"error"`
	Expression        string                   `json:"expression"`
	DependentVariable string                   `json:"dependentVariable"`
	Scope             map[string]float64       `json:"scope"`
	Ranges            map[string]sampler.Range `json:"ranges"`
}

// ParseReply validates a model answer and converts it to a descriptor.
//
// The answer may be wrapped in a Markdown code fence or surrounded by prose;
// the outermost JSON object is used. An "error" key becomes a Failure with
// that message, and an answer without an expression is a generic Failure.
func ParseReply(content string) (*sampler.Descriptor, error) {
	body := extractJSON(content)
	if body == "" {
		return nil, Fail("", errors.New("reply contains no JSON object"))
	}

	var r reply
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, Fail("", fmt.Errorf("malformed reply: %w", err))
	}
	if r.Error != "" {
		return nil, Fail(r.Error, nil)
	}

	d := &sampler.Descriptor{
		Expression:        strings.TrimSpace(r.Expression),
		DependentVariable: strings.TrimSpace(r.DependentVariable),
		Scope:             r.Scope,
		Ranges:            r.Ranges,
	}
	return complete(d)
}

// complete fills defaults on a freshly recognized descriptor and rejects one
// without an expression or whose expression does not compile.
func complete(d *sampler.Descriptor) (*sampler.Descriptor, error) {
	if d.Expression == "" {
		return nil, Fail("", errors.New("reply has no expression"))
	}
	if d.DependentVariable == "" {
		d.DependentVariable = "y"
	}
	if d.Scope == nil {
		d.Scope = map[string]float64{}
	}
	if len(d.Scope) == 0 && len(d.Ranges) == 0 {
		if vars := sampler.FreeVariables(d.Expression); len(vars) == 1 {
			d.Scope[vars[0]] = 0
		}
	}
	if err := d.Validate(); err != nil {
		return nil, Fail("", err)
	}
	return d, nil
}

func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
