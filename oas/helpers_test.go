package oas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const petstoreSpec = `
openapi: "3.0.3"
info:
  title: Pets
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
            minimum: 1
            default: 20
        - name: tags
          in: query
          schema:
            type: array
            items:
              type: string
        - $ref: "#/components/parameters/TraceID"
      responses:
        "200":
          description: ok
          headers:
            X-Total:
              required: true
              schema:
                type: integer
            Content-Type:
              required: true
              schema:
                type: string
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
        default:
          $ref: "#/components/responses/Error"
    post:
      operationId: createPet
      x-middlewares: [audit]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewPet"
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
        "4XX":
          $ref: "#/components/responses/Error"
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: integer
    get:
      x-dispatcher: showPet
      parameters:
        - name: verbose
          in: query
          nullable: true
          default: null
          schema:
            type: boolean
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
    delete:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: string
      responses:
        "204":
          description: deleted
components:
  parameters:
    TraceID:
      name: X-Trace-Id
      in: header
      schema:
        type: string
        format: uuid
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
        name:
          type: string
        tag:
          type: string
          nullable: true
    NewPet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          minLength: 1
        tag:
          type: string
          default: none
  responses:
    Error:
      description: error
      content:
        application/json:
          schema:
            type: object
            properties:
              message:
                type: string
`

// loadSpec parses src and fails the test on error.
func loadSpec(t *testing.T, src string, opts ...LoadOption) *Specification {
	t.Helper()
	spec, err := Load(append([]LoadOption{WithBytes([]byte(src))}, opts...)...)
	require.NoError(t, err)
	return spec
}

// newProcessor loads src and wraps it in a Processor.
func newProcessor(t *testing.T, src string) *Processor {
	t.Helper()
	proc, err := New(loadSpec(t, src))
	require.NoError(t, err)
	return proc
}

// denormalize looks up, validates and denormalizes one operation.
func denormalize(t *testing.T, proc *Processor, path, method string) *Operation {
	t.Helper()
	decl, err := proc.LookupOperation(path, method)
	require.NoError(t, err)
	require.NoError(t, proc.ValidateOperation(decl))
	op, err := proc.DenormalizeOperation(decl)
	require.NoError(t, err)
	return op
}
