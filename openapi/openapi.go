package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

const schemaRefPrefix = "#/components/schemas/"

// Document accumulates the API description as routes are registered.
type Document struct {
	mu      sync.RWMutex
	root    *openapi3.T
	schemas map[reflect.Type]string
}

func New(title, version string) *Document {
	return &Document{
		root: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas:         make(openapi3.Schemas),
				SecuritySchemes: make(openapi3.SecuritySchemes),
			},
		},
		schemas: make(map[reflect.Type]string),
	}
}

func (d *Document) Description(desc string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root.Info.Description = desc
	return d
}

func (d *Document) Tag(name, description string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root.Tags = append(d.root.Tags, &openapi3.Tag{Name: name, Description: description})
	return d
}

func (d *Document) BearerAuth(name string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	return d
}

func (d *Document) CookieAuth(name, cookieName string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{Type: "apiKey", In: "cookie", Name: cookieName},
	}
	return d
}

func (d *Document) OpenAPI() *openapi3.T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

func (d *Document) JSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return json.MarshalIndent(d.root, "", "  ")
}

func (d *Document) YAML() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	intermediate, err := d.root.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

func (d *Document) JSONHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := d.JSON()
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, data)
	}
}

func (d *Document) YAMLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := d.YAML()
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	}
}

func (d *Document) addOperation(method, path string, op *openapi3.Operation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := echoPathToOpenAPI(path)
	item := d.root.Paths.Find(p)
	if item == nil {
		item = &openapi3.PathItem{}
		d.root.Paths.Set(p, item)
	}
	item.SetOperation(strings.ToUpper(method), op)
}

func echoPathToOpenAPI(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + strings.TrimPrefix(part, ":") + "}"
		}
	}
	return strings.Join(parts, "/")
}

func (d *Document) schemaFor(example any) *openapi3.SchemaRef {
	d.mu.Lock()
	defer d.mu.Unlock()

	if example == nil {
		return &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}
	}
	return d.typeSchema(reflect.TypeOf(example))
}

func (d *Document) typeSchema(t reflect.Type) *openapi3.SchemaRef {
	if t.Kind() == reflect.Pointer {
		ref := d.typeSchema(t.Elem())
		if ref.Value != nil {
			ref.Value.Nullable = true
		}
		return ref
	}

	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return openapi3.NewIntegerSchema().NewRef()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().WithMin(0).NewRef()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()
	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()
	case reflect.Slice, reflect.Array:
		schema := openapi3.NewArraySchema()
		schema.Items = d.typeSchema(t.Elem())
		return schema.NewRef()
	case reflect.Struct:
		return d.structSchema(t)
	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}

// structSchema registers named structs as components and returns a reference to them.
func (d *Document) structSchema(t reflect.Type) *openapi3.SchemaRef {
	if t.PkgPath() == "time" && t.Name() == "Time" {
		return openapi3.NewDateTimeSchema().NewRef()
	}
	if t.Name() == "" {
		return &openapi3.SchemaRef{Value: d.buildStruct(t)}
	}

	if name, ok := d.schemas[t]; ok {
		return openapi3.NewSchemaRef(schemaRefPrefix+name, nil)
	}

	name := t.Name()
	if _, taken := d.root.Components.Schemas[name]; taken {
		name = componentPrefix(t.PkgPath()) + name
	}
	d.schemas[t] = name
	d.root.Components.Schemas[name] = &openapi3.SchemaRef{Value: d.buildStruct(t)}
	return openapi3.NewSchemaRef(schemaRefPrefix+name, nil)
}

func componentPrefix(pkgPath string) string {
	pkg := pkgPath[strings.LastIndex(pkgPath, "/")+1:]
	if pkg == "" {
		return ""
	}
	return strings.ToUpper(pkg[:1]) + pkg[1:]
}

func (d *Document) buildStruct(t reflect.Type) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		name := field.Name
		if parts[0] != "" {
			name = parts[0]
		}

		ref := d.typeSchema(field.Type)
		if ref.Value != nil {
			if doc := field.Tag.Get("doc"); doc != "" {
				ref.Value.Description = doc
			}
			if ex := field.Tag.Get("example"); ex != "" {
				ref.Value.Example = ex
			}
		}
		schema.Properties[name] = ref

		if isRequired(field, parts[1:]) {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

func isRequired(field reflect.StructField, jsonOpts []string) bool {
	for _, opt := range jsonOpts {
		if opt == "omitempty" {
			return false
		}
	}
	if rules, ok := field.Tag.Lookup("validate"); ok {
		for _, rule := range strings.Split(rules, ",") {
			if rule == "required" {
				return true
			}
		}
		return false
	}
	return true
}
