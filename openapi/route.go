package openapi

import (
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type RouteBuilder struct {
	doc       *Document
	method    string
	path      string
	operation *openapi3.Operation
}

// Document starts describing one route. Path parameters written echo-style are declared automatically.
func (d *Document) Document(method, path string) *RouteBuilder {
	rb := &RouteBuilder{
		doc:       d,
		method:    method,
		path:      path,
		operation: &openapi3.Operation{Responses: openapi3.NewResponses()},
	}
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ":") {
			rb.PathParam(strings.TrimPrefix(part, ":"), "")
		}
	}
	return rb
}

func (rb *RouteBuilder) Summary(summary string) *RouteBuilder {
	rb.operation.Summary = summary
	return rb
}

func (rb *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	rb.operation.Tags = append(rb.operation.Tags, tags...)
	return rb
}

func (rb *RouteBuilder) PathParam(name, description string) *RouteBuilder {
	p := rb.param(name, "path")
	p.Required = true
	p.Description = description
	return rb
}

func (rb *RouteBuilder) QueryParam(name, typ, description string) *RouteBuilder {
	p := rb.param(name, "query")
	p.Description = description
	p.Schema = &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{typ}}}
	return rb
}

func (rb *RouteBuilder) param(name, in string) *openapi3.Parameter {
	for _, ref := range rb.operation.Parameters {
		if ref.Value != nil && ref.Value.Name == name && ref.Value.In == in {
			return ref.Value
		}
	}
	p := &openapi3.Parameter{Name: name, In: in, Schema: openapi3.NewStringSchema().NewRef()}
	rb.operation.Parameters = append(rb.operation.Parameters, &openapi3.ParameterRef{Value: p})
	return p
}

func (rb *RouteBuilder) Body(example any, description string) *RouteBuilder {
	rb.operation.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithDescription(description).
			WithRequired(true).
			WithJSONSchemaRef(rb.doc.schemaFor(example)),
	}
	return rb
}

func (rb *RouteBuilder) Response(status int, example any, description string) *RouteBuilder {
	resp := openapi3.NewResponse().WithDescription(description)
	if example != nil {
		resp = resp.WithJSONSchemaRef(rb.doc.schemaFor(example))
	}
	rb.operation.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: resp})
	return rb
}

// Security requires any one of the named schemes.
func (rb *RouteBuilder) Security(schemes ...string) *RouteBuilder {
	if rb.operation.Security == nil {
		rb.operation.Security = openapi3.NewSecurityRequirements()
	}
	for _, scheme := range schemes {
		rb.operation.Security.With(openapi3.NewSecurityRequirement().Authenticate(scheme))
	}
	return rb
}

func (rb *RouteBuilder) Build() {
	rb.doc.addOperation(rb.method, rb.path, rb.operation)
}
