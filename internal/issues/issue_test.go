package issues

import (
	"testing"

	"github.com/erraggy/oashttp/internal/severity"
	"github.com/erraggy/oashttp/oaserrors"
	"github.com/stretchr/testify/assert"
)

func TestIssueString(t *testing.T) {
	assert.Equal(t, "error paths./pets.get: missing responses",
		Errorf("paths./pets.get", "missing responses").String())
	assert.Equal(t, "warning non-standard status code",
		Warnf("", "non-standard status code").String())
}

func TestList(t *testing.T) {
	list := List{
		Warnf("a", "first warning"),
		Errorf("b", "first error"),
		Errorf("", "second error"),
	}

	assert.True(t, list.HasErrors())
	assert.Len(t, list.Errors(), 2)
	assert.Len(t, list.Warnings(), 1)
	assert.Equal(t, severity.SeverityWarning, list.Warnings()[0].Severity)
	assert.Equal(t, []oaserrors.Issue{
		{Path: "b", Message: "first error"},
		{Message: "second error"},
	}, list.Public())

	var empty List
	assert.False(t, empty.HasErrors())
	assert.Nil(t, empty.Public())
	assert.False(t, List{Warnf("a", "w")}.HasErrors())
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{nil, ""},
		{[]string{"body"}, "body"},
		{[]string{"paths", "/pets", "get"}, "paths./pets.get"},
		{[]string{"", "query", "limit"}, "query.limit"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPath(tt.segments...))
	}
}
