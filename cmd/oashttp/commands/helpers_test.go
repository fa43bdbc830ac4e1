package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/oashttp/oaslog"
	"github.com/stretchr/testify/require"
)

const mockSpec = `
openapi: "3.0.3"
info:
  title: Mock
  version: "1.0.0"
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            maximum: 100
      responses:
        "200":
          description: ok
          headers:
            X-Total:
              required: true
              example: 1
              schema:
                type: integer
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
              example:
                - id: 1
                  name: rex
        default:
          description: error
    post:
      x-middlewares: [audit]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
              examples:
                b:
                  value: {id: 2, name: second}
                a:
                  value: {id: 1, name: first}
  /pets/{petId}:
    delete:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
      responses:
        "204":
          description: deleted
  /upload:
    post:
      requestBody:
        content:
          text/plain:
            schema:
              type: string
      responses:
        "200":
          description: ok
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
        name:
          type: string
`

// writeSpec writes src to a temporary file and returns its path.
func writeSpec(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

// mustCompile compiles src with a silent logger.
func mustCompile(t *testing.T, src string) *compiled {
	t.Helper()
	c, err := compileSpec(writeSpec(t, src), oaslog.NopLogger{})
	require.NoError(t, err)
	return c
}
