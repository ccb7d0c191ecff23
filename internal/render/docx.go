// Package render substitutes letter fields into the DOCX template.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// Placeholder names inside the template document.
const (
	PlaceholderContent      = "{inhalt}"
	PlaceholderTitle        = "{title}"
	PlaceholderDate         = "{datum}"
	PlaceholderOrganization = "{firma}"
	PlaceholderAddress      = "{adresse}"
)

// Fields carries the values substituted into the template.
type Fields struct {
	Content      string
	Title        string
	Date         string
	Organization string
	Address      string
}

// TemplateError marks a missing or malformed template, or a template whose
// structure does not match the expected placeholders. Structural mismatch is
// a hard failure; there is no partial render.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Letter renders the template at templatePath with the given fields and
// returns the serialized DOCX bytes.
func Letter(templatePath string, fields Fields) ([]byte, error) {
	tpl, err := docx.ReadDocxFile(templatePath)
	if err != nil {
		return nil, &TemplateError{Message: "cannot open template " + templatePath, Cause: err}
	}
	defer tpl.Close()

	doc := tpl.Editable()
	content := doc.GetContent()

	replacements := []struct {
		placeholder string
		value       string
	}{
		{PlaceholderContent, fields.Content},
		{PlaceholderTitle, fields.Title},
		{PlaceholderDate, fields.Date},
		{PlaceholderOrganization, fields.Organization},
		{PlaceholderAddress, fields.Address},
	}

	for _, r := range replacements {
		if !strings.Contains(content, r.placeholder) {
			return nil, &TemplateError{Message: "placeholder " + r.placeholder + " not found in template"}
		}
	}
	for _, r := range replacements {
		if err := doc.Replace(r.placeholder, encodeValue(r.value), -1); err != nil {
			return nil, &TemplateError{Message: "cannot substitute " + r.placeholder, Cause: err}
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, &TemplateError{Message: "cannot serialize document", Cause: err}
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// encodeValue escapes the value for the document XML and turns newlines into
// explicit line breaks so multi-paragraph letter text survives.
func encodeValue(value string) string {
	escaped := xmlEscaper.Replace(value)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", `</w:t><w:br/><w:t xml:space="preserve">`)
}
