// Package mailbody renders certificate emails from Markdown templates.
// The rendered Markdown is the plain-text part; goldmark renders the HTML
// alternative from the same template.
package mailbody

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	certmail "github.com/alnah/go-certmail"
)

// Sentinel errors for body rendering.
var (
	ErrTemplateParse = errors.New("invalid mail template")
	ErrTemplateExec  = errors.New("mail template failed")
	ErrEmptySubject  = errors.New("mail subject is empty")
	ErrHTMLRender    = errors.New("markdown to HTML conversion failed")
)

// htmlDocument wraps goldmark's fragment output. Mail clients ignore
// external styles, so the only styling is inline.
const htmlDocument = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
</head>
<body style="font-family: Georgia, serif; line-height: 1.5;">
%s</body>
</html>
`

// Renderer renders subject and body for one participant.
type Renderer struct {
	subject *template.Template
	body    *template.Template
	md      goldmark.Markdown
}

// New parses the subject and Markdown body templates. Both receive
// certmail.BodyData as their dot.
func New(subject, body string) (*Renderer, error) {
	subjectTmpl, err := template.New("subject").Option("missingkey=error").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrTemplateParse, err)
	}
	bodyTmpl, err := template.New("body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrTemplateParse, err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)

	return &Renderer{subject: subjectTmpl, body: bodyTmpl, md: md}, nil
}

// Render executes the templates. Participant data is inserted verbatim in
// the text part and Markdown-escaped before conversion to HTML, so a name
// like "Ana *Star* Lee" cannot change the formatting.
func (r *Renderer) Render(data certmail.BodyData) (*certmail.Body, error) {
	subject, err := execute(r.subject, data)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrTemplateExec, err)
	}
	subject = singleLine(subject)
	if subject == "" {
		return nil, ErrEmptySubject
	}

	text, err := execute(r.body, data)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrTemplateExec, err)
	}

	escaped, err := execute(r.body, certmail.BodyData{
		Name:  escapeMarkdown(data.Name),
		Event: escapeMarkdown(data.Event),
		Date:  escapeMarkdown(data.Date),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrTemplateExec, err)
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(escaped), &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLRender, err)
	}

	return &certmail.Body{
		Subject: subject,
		Text:    strings.TrimSpace(text) + "\n",
		HTML:    fmt.Sprintf(htmlDocument, buf.String()),
	}, nil
}

func execute(t *template.Template, data certmail.BodyData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// singleLine collapses whitespace so a subject can never carry a header break.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// escapeMarkdown backslash-escapes ASCII punctuation, which CommonMark
// always renders literally.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Compile-time interface check.
var _ certmail.BodyRenderer = (*Renderer)(nil)
