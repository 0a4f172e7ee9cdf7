package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/cells/pkg/vdom"
)

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	page := PageData{
		Title:       "A & B",
		Body:        vdom.Div(vdom.ID("root")),
		StyleSheets: []string{"/s.css"},
		Styles:      []string{".x{}"},
		Scripts:     []ScriptTag{{Src: "/app.js", Defer: true}, {Inline: "go()"}},
	}

	if err := NewRenderer(RendererConfig{}).RenderPage(&buf, page); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>A &amp; B</title>",
		`<link rel="stylesheet" href="/s.css">`,
		"<style>.x{}</style>",
		`<div id="root"></div>`,
		`<script src="/app.js" defer></script>`,
		"<script>go()</script>",
		"</html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
	if strings.Index(html, `<div id="root">`) > strings.Index(html, "go()") {
		t.Error("scripts should follow the body content")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	c := Component(vdom.Span(vdom.Text("hi")), RendererConfig{})

	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.String() != "<span>hi</span>" {
		t.Errorf("got %q", buf.String())
	}
}

func TestComponentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := Page(PageData{Title: "x"}, RendererConfig{}).Render(ctx, &buf); err == nil {
		t.Error("expected context error")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}
