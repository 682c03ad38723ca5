package openapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10" example:"+14155551234"`
}

type profileResponse struct {
	ID         uint      `json:"id"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Internal   string    `json:"-"`
	unexported string
}

func TestDocument_PathParamsAreConverted(t *testing.T) {
	doc := New("Test API", "1.0.0")
	doc.Document(http.MethodGet, "/api/profiles/:id").
		Summary("Get profile").
		Response(http.StatusOK, profileResponse{}, "Profile").
		Build()

	item := doc.OpenAPI().Paths.Find("/api/profiles/{id}")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	require.Len(t, item.Get.Parameters, 1)
	assert.Equal(t, "id", item.Get.Parameters[0].Value.Name)
	assert.Equal(t, "path", item.Get.Parameters[0].Value.In)
	assert.True(t, item.Get.Parameters[0].Value.Required)
}

func TestDocument_StructSchemas(t *testing.T) {
	doc := New("Test API", "1.0.0")
	doc.Document(http.MethodPost, "/api/phone/send-code").
		Body(sendCodeRequest{}, "Phone to verify").
		Response(http.StatusOK, profileResponse{}, "ok").
		Build()

	schemas := doc.OpenAPI().Components.Schemas

	req, ok := schemas["sendCodeRequest"]
	require.True(t, ok)
	assert.Contains(t, req.Value.Required, "phoneNumber")
	assert.Equal(t, "+14155551234", req.Value.Properties["phoneNumber"].Value.Example)

	resp, ok := schemas["profileResponse"]
	require.True(t, ok)
	assert.Contains(t, resp.Value.Properties, "createdAt")
	assert.Equal(t, "date-time", resp.Value.Properties["createdAt"].Value.Format)
	assert.NotContains(t, resp.Value.Properties, "Internal")
	assert.NotContains(t, resp.Value.Properties, "unexported")
	assert.NotContains(t, resp.Value.Required, "photoUrl")
}

func TestDocument_SchemaIsRegisteredOnce(t *testing.T) {
	doc := New("Test API", "1.0.0")
	for _, path := range []string{"/a", "/b"} {
		doc.Document(http.MethodGet, path).Response(http.StatusOK, profileResponse{}, "ok").Build()
	}

	assert.Len(t, doc.OpenAPI().Components.Schemas, 1)

	ref := doc.OpenAPI().Paths.Find("/b").Get.Responses.Value("200").Value.Content.Get("application/json").Schema
	assert.Equal(t, "#/components/schemas/profileResponse", ref.Ref)
}

func TestDocument_Security(t *testing.T) {
	doc := New("Test API", "1.0.0").BearerAuth("bearerAuth").CookieAuth("sessionAuth", "session")
	doc.Document(http.MethodGet, "/api/auth/user").Security("bearerAuth", "sessionAuth").Build()

	op := doc.OpenAPI().Paths.Find("/api/auth/user").Get
	require.NotNil(t, op.Security)
	assert.Len(t, *op.Security, 2)
	assert.Contains(t, doc.OpenAPI().Components.SecuritySchemes, "bearerAuth")
	assert.Equal(t, "cookie", doc.OpenAPI().Components.SecuritySchemes["sessionAuth"].Value.In)
}

func TestDocument_Handlers(t *testing.T) {
	doc := New("Test API", "1.0.0").Description("desc")
	doc.Document(http.MethodGet, "/healthz").Response(http.StatusOK, nil, "ok").Build()

	e := echo.New()

	rec := httptest.NewRecorder()
	err := doc.JSONHandler()(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil), rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title": "Test API"`)
	assert.Contains(t, rec.Body.String(), "/healthz")

	rec = httptest.NewRecorder()
	err = doc.YAMLHandler()(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/openapi.yaml", nil), rec))
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "title: Test API")
}
