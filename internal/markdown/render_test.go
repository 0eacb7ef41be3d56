package markdown

import (
	"strings"
	"testing"
)

func TestRenderHeading(t *testing.T) {
	html, err := Render("# Hello\n\nworld")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<h1>Hello</h1>") {
		t.Errorf("html = %q", html)
	}
	if !strings.Contains(html, "<p>world</p>") {
		t.Errorf("html = %q", html)
	}
}

func TestRenderGFMTable(t *testing.T) {
	html, err := Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("tables should render, got %q", html)
	}
}

func TestRenderEscapesRawText(t *testing.T) {
	html, err := Render("1 < 2 & 3 > 2")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, "1 < 2 &") {
		t.Errorf("text was not escaped: %q", html)
	}
}
