package oas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oashttp/oaserrors"
)

func TestLoad_Bytes(t *testing.T) {
	spec := loadSpec(t, petstoreSpec)

	assert.Equal(t, "3.0.3", spec.Version())
	assert.Equal(t, bytesSource, spec.Source())
	assert.Equal(t, []string{"/pets", "/pets/{petId}"}, spec.Paths())
	require.NotNil(t, spec.Components())
	assert.Contains(t, spec.Components().Schemas, "Pet")

	item, ok := spec.PathItem("/pets")
	require.True(t, ok)
	assert.NotNil(t, item.Get)

	_, ok = spec.PathItem("/missing")
	assert.False(t, ok)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstoreSpec), 0o600))

	spec, err := Load(WithFilePath(path))
	require.NoError(t, err)
	assert.Equal(t, path, spec.Source())
	assert.Len(t, spec.Paths(), 2)
}

func TestLoad_Sources(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		_, err := Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrLoad))
	})

	t.Run("both sources", func(t *testing.T) {
		_, err := Load(WithFilePath("openapi.yaml"), WithBytes([]byte(petstoreSpec)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrLoad))
	})

	t.Run("empty options", func(t *testing.T) {
		_, err := Load(WithFilePath(""))
		assert.Error(t, err)
		_, err = Load(WithBytes(nil))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(WithFilePath(filepath.Join(t.TempDir(), "nope.yaml")))
		var loadErr *oaserrors.LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Contains(t, loadErr.Source, "nope.yaml")
	})
}

func TestLoad_StructuralErrors(t *testing.T) {
	const src = `
openapi: "3.0.3"
info:
  version: "1.0.0"
paths:
  /things:
    get:
      responses:
        "200":
          description: ok
`
	_, err := Load(WithBytes([]byte(src)))
	var loadErr *oaserrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "info.title")

	spec, err := Load(WithBytes([]byte(src)), WithValidateStructure(false))
	require.NoError(t, err)
	assert.Equal(t, []string{"/things"}, spec.Paths())
}

func TestLoad_RejectsOAS2(t *testing.T) {
	const src = `
swagger: "2.0"
info:
  title: Old
  version: "1.0.0"
paths: {}
`
	_, err := Load(WithBytes([]byte(src)), WithValidateStructure(false))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrLoad))
	assert.Contains(t, err.Error(), "only OAS 3.x")
}

func TestNewSpecification_Nil(t *testing.T) {
	_, err := NewSpecification(nil)
	assert.True(t, errors.Is(err, oaserrors.ErrLoad))
}

func TestSpecification_Raw(t *testing.T) {
	spec := loadSpec(t, petstoreSpec)

	v, ok := spec.Raw("paths", "/pets/{petId}", "get", "parameters", "0", "default")
	assert.True(t, ok, "explicit null default is present")
	assert.Nil(t, v)

	_, ok = spec.Raw("paths", "/pets/{petId}", "get", "parameters", "0", "example")
	assert.False(t, ok)

	_, ok = spec.Raw("paths", "/pets", "get", "parameters", "9")
	assert.False(t, ok)

	node, tokens, ok := spec.rawFollow([]string{"paths", "/pets", "get", "parameters", "2"})
	require.True(t, ok)
	assert.Equal(t, []string{"components", "parameters", "TraceID"}, tokens)
	name, _ := rawString(node, "name")
	assert.Equal(t, "X-Trace-Id", name)
}

func TestPointerTokens(t *testing.T) {
	tokens, err := pointerTokens("#/components/schemas/a~1b~0c")
	require.NoError(t, err)
	assert.Equal(t, []string{"components", "schemas", "a/b~c"}, tokens)

	tokens, err = pointerTokens("#")
	require.NoError(t, err)
	assert.Empty(t, tokens)

	_, err = pointerTokens("other.yaml#/components/schemas/Pet")
	assert.Error(t, err)

	_, err = pointerTokens("#components")
	assert.Error(t, err)
}

func TestDeclarations_Order(t *testing.T) {
	spec := loadSpec(t, petstoreSpec)

	var got []string
	for _, d := range spec.Declarations() {
		got = append(got, d.Method+" "+d.Path)
	}
	assert.Equal(t, []string{
		"get /pets",
		"post /pets",
		"get /pets/{petId}",
		"delete /pets/{petId}",
	}, got)
}
