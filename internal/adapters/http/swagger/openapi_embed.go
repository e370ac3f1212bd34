// Package swagger serves the OpenAPI document and a ReDoc page for it.
package swagger

import _ "embed"

// OpenAPI is the API description served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
