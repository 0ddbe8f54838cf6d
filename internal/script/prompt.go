package script

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the narrator persona and adaptation instructions.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the per-chunk instruction embedding the section text
// and the strict output-format contract.
func UserPrompt(chunkText string, chunkIndex int, sectionTitle string) string {
	var buf bytes.Buffer
	data := struct {
		ChunkText    string
		ChunkIndex   int
		SectionTitle string
	}{
		ChunkText:    chunkText,
		ChunkIndex:   chunkIndex,
		SectionTitle: sectionTitle,
	}
	if err := userTemplate.Execute(&buf, data); err != nil {
		// Fallback to raw template on error
		return userPromptTmpl
	}
	return buf.String()
}
