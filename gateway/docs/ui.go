package docs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenAPI description served at /openapi.json
const openapiJSON = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Gazothèque Gateway API",
    "version": "0.1.0"
  },
  "servers": [ { "url": "/" } ],
  "tags": [
    {"name": "session", "description": "Session and account"},
    {"name": "materials", "description": "Gas cylinder records"},
    {"name": "overview", "description": "Dashboard widgets"},
    {"name": "public", "description": "QR code landing page"}
  ],
  "components": {
    "securitySchemes": {
      "bearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
    },
    "parameters": {
      "id": {"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}
    }
  },
  "security": [{"bearerAuth": []}],
  "paths": {
    "/api/session/me": {
      "get": {"summary": "Current user, or authenticated=false","tags": ["session"],"security": [],"responses": {"200": {"description": "OK"}}}
    },
    "/api/session/logout": {
      "post": {"summary": "Drop the session cookie","tags": ["session"],"security": [],"responses": {"200": {"description": "OK"}}}
    },
    "/api/account/role": {
      "put": {"summary": "Change own role (user, owner, admin)","tags": ["session"],"responses": {"200": {"description": "Renewed token"},"400": {"description": "Unknown role"}}}
    },
    "/api/account/picture": {
      "post": {"summary": "Upload profile picture (field profil_pic)","tags": ["session"],"responses": {"200": {"description": "Renewed token"}}}
    },
    "/api/materials": {
      "get": {
        "summary": "Filtered, paginated collection",
        "tags": ["materials"],
        "parameters": [
          {"name": "search", "in": "query", "schema": {"type": "string"}},
          {"name": "tags", "in": "query", "schema": {"type": "array", "items": {"type": "string"}}},
          {"name": "page", "in": "query", "schema": {"type": "integer", "minimum": 0}},
          {"name": "page_size", "in": "query", "schema": {"type": "integer", "enum": [25, 50, 100, 150, 200, 250]}},
          {"name": "filter_key", "in": "query", "schema": {"type": "string"}}
        ],
        "responses": {"200": {"description": "OK"}}
      },
      "post": {"summary": "Create a material","tags": ["materials"],"responses": {"201": {"description": "Created, with redirect"},"400": {"description": "Missing required fields"}}}
    },
    "/api/materials/refresh": {
      "post": {"summary": "Refetch the collection","tags": ["materials"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/materials/latest": {
      "get": {"summary": "Latest materials","tags": ["materials"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/materials/mine": {
      "get": {"summary": "Materials of the caller's owner profile","tags": ["materials"],"responses": {"200": {"description": "OK"},"403": {"description": "Not an owner"}}}
    },
    "/api/materials/tags": {
      "get": {"summary": "Tags in use","tags": ["materials"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/materials/search-by-tags": {
      "get": {"summary": "Server side tag search","tags": ["materials"],"responses": {"200": {"description": "OK"},"400": {"description": "No tag"}}}
    },
    "/api/materials/{id}": {
      "parameters": [{"$ref": "#/components/parameters/id"}],
      "get": {"summary": "Record with permissions","tags": ["materials"],"responses": {"200": {"description": "OK"},"404": {"description": "Not found"}}},
      "put": {"summary": "Apply confirmed edits","tags": ["materials"],"responses": {"200": {"description": "OK"},"403": {"description": "Forbidden"},"409": {"description": "Unconfirmed or consigned"}}},
      "delete": {"summary": "Delete after confirmation (admin only)","tags": ["materials"],"responses": {"200": {"description": "Deleted, with redirect"},"403": {"description": "Forbidden"},"409": {"description": "Unconfirmed or consigned"}}}
    },
    "/api/materials/{id}/label": {
      "parameters": [{"$ref": "#/components/parameters/id"}],
      "get": {"summary": "QR label PNG, or archive it with archive=true","tags": ["materials"],"responses": {"200": {"description": "PNG or archive URL"}}}
    },
    "/api/owners": {
      "get": {"summary": "Active owners for the creation form","tags": ["materials"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/tags": {
      "get": {"summary": "Tag catalogue","tags": ["materials"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/overview": {
      "get": {"summary": "All widgets, refresh=true to refetch","tags": ["overview"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/overview/total": {
      "get": {"summary": "Total count","tags": ["overview"],"responses": {"200": {"description": "OK"},"502": {"description": "Widget failed"}}}
    },
    "/api/overview/labs": {
      "get": {"summary": "Count per lab","tags": ["overview"],"responses": {"200": {"description": "OK"},"502": {"description": "Widget failed"}}}
    },
    "/api/overview/yearly": {
      "get": {"summary": "Yearly bar chart","tags": ["overview"],"responses": {"200": {"description": "OK"},"502": {"description": "Widget failed"}}}
    },
    "/api/public/materials/{id}": {
      "parameters": [{"$ref": "#/components/parameters/id"}],
      "get": {"summary": "Read-only record for QR code scans","tags": ["public"],"security": [],"responses": {"200": {"description": "OK"}}}
    }
  }
}`

// RegisterRoutes wires the API documentation endpoints into the Gin engine.
// - GET /openapi.json: OpenAPI 3.0 description
// - GET /docs: Swagger UI (via CDN) loading /openapi.json
func RegisterRoutes(r *gin.Engine) {
	r.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(openapiJSON))
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Gazothèque API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  <style>body { margin: 0; padding: 0; }</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.json',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
