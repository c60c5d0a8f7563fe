// Package notification tells applicants how their registration request was
// decided.
package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

type Outcome string

const (
	OutcomeAccept Outcome = "ACCEPT"
	OutcomeReject Outcome = "REJECT"
)

func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToUpper(s)) {
	case OutcomeAccept:
		return OutcomeAccept, nil
	case OutcomeReject:
		return OutcomeReject, nil
	default:
		return "", fmt.Errorf("unknown outcome %q", s)
	}
}

// Notifier delivers the decision on a registration request to address.
type Notifier interface {
	Notify(ctx context.Context, address string, outcome Outcome, reason, name string) error
}

// Message is a rendered notification.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

//go:embed templates/*
var templateFS embed.FS

var subjects = map[Outcome]string{
	OutcomeAccept: "Your registration has been accepted",
	OutcomeReject: "Your registration has been declined",
}

type templateData struct {
	Name   string
	Reason string
}

// Renderer turns an outcome into a Message using the embedded templates.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &Renderer{html: html, text: text}, nil
}

// MustRenderer panics when the embedded templates do not parse.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(outcome Outcome, reason, name string) (*Message, error) {
	subject, ok := subjects[outcome]
	if !ok {
		return nil, fmt.Errorf("unknown outcome %q", outcome)
	}
	base := strings.ToLower(string(outcome))
	data := templateData{Name: name, Reason: reason}

	var html bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, base+".html", data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", base, err)
	}
	var text bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, base+".txt", data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", base, err)
	}

	return &Message{Subject: subject, HTML: html.String(), Text: text.String()}, nil
}
