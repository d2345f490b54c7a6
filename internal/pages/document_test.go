package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	src := []byte(`---
key: cascada
title: Cascada
summary: Un resumen
---
Texto **importante**.

<div class="phases-list">
<div class="phase-item"><h3>1. Fase</h3></div>
</div>

<a href="#rad" class="btn" data-page="rad" onclick="alert(1)">RAD</a>
<script>alert("x")</script>
`)

	doc, err := ParseDocument("cascada.md", src)
	require.NoError(t, err)

	assert.Equal(t, Cascada, doc.Key)
	assert.Equal(t, "Cascada", doc.Title)
	assert.Equal(t, "fas fa-stream", doc.Icon)
	assert.Equal(t, "Un resumen", doc.Summary)
	assert.False(t, doc.HasBack)

	assert.Contains(t, doc.Body, "<strong>importante</strong>")
	assert.Contains(t, doc.Body, `class="phase-item"`)
	assert.Contains(t, doc.Body, `data-page="rad"`)
	assert.NotContains(t, doc.Body, "onclick")
	assert.NotContains(t, doc.Body, "<script>")
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "no front matter", input: "hola", wantErr: "missing front matter"},
		{name: "unterminated front matter", input: "---\nkey: home\n", wantErr: "missing front matter"},
		{name: "bad yaml", input: "---\nkey: [\n---\n", wantErr: "parse front matter"},
		{name: "unknown key", input: "---\nkey: foo\ntitle: x\n---\n", wantErr: "unknown page key"},
		{name: "missing title", input: "---\nkey: home\n---\n", wantErr: "title is required"},
		{name: "unknown back link", input: "---\nkey: rad\ntitle: x\nback: bar\n---\n", wantErr: "unknown back link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument("test.md", []byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDataPageAttributeIsFiltered(t *testing.T) {
	src := []byte("---\nkey: home\ntitle: x\n---\n<a href=\"#x\" data-page=\"javascript:alert(1)\">x</a>\n")

	doc, err := ParseDocument("home.md", src)
	require.NoError(t, err)
	assert.NotContains(t, doc.Body, "data-page")
}

func TestSplitFrontMatterHandlesCRLF(t *testing.T) {
	fm, body := splitFrontMatter("---\r\nkey: home\r\n---\r\nbody\r\n")
	assert.Equal(t, "key: home", fm)
	assert.Equal(t, "body\n", body)
}
