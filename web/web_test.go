package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesExist(t *testing.T) {
	templatesFS := GetTemplatesFS()

	requiredFiles := []string{
		"index.html",
		"vote.html",
		"results.html",
		"admin/login.html",
		"admin/layout.html",
		"admin/panel.html",
	}

	for _, file := range requiredFiles {
		if _, err := fs.Stat(templatesFS, file); err != nil {
			t.Errorf("required template %q not found: %v", file, err)
		}
	}
}

func TestEmbeddedStaticFilesExist(t *testing.T) {
	staticFS := GetStaticFS()

	requiredFiles := []string{
		"css/app.css",
		"css/admin.css",
		"js/entry.js",
		"js/vote.js",
		"js/results.js",
		"js/admin.js",
	}

	for _, file := range requiredFiles {
		if _, err := fs.Stat(staticFS, file); err != nil {
			t.Errorf("required static file %q not found: %v", file, err)
		}
	}
}

func TestTemplatesReadable(t *testing.T) {
	templatesFS := GetTemplatesFS()

	content, err := fs.ReadFile(templatesFS, "admin/layout.html")
	if err != nil {
		t.Fatalf("failed to read admin/layout.html: %v", err)
	}
	if len(content) == 0 {
		t.Error("admin/layout.html is empty")
	}
}

func TestStaticFilesReadable(t *testing.T) {
	staticFS := GetStaticFS()

	content, err := fs.ReadFile(staticFS, "js/vote.js")
	if err != nil {
		t.Fatalf("failed to read js/vote.js: %v", err)
	}
	if len(content) == 0 {
		t.Error("js/vote.js is empty")
	}
}

// The voting screen must offer a confirmation-gated way to abandon a
// draft; without it the reset endpoint is unreachable from a phone.
func TestVotePageWiresReset(t *testing.T) {
	page, err := fs.ReadFile(GetTemplatesFS(), "vote.html")
	if err != nil {
		t.Fatalf("failed to read vote.html: %v", err)
	}
	if !strings.Contains(string(page), `id="reset-btn"`) {
		t.Error("vote.html is missing the reset button")
	}

	script, err := fs.ReadFile(GetStaticFS(), "js/vote.js")
	if err != nil {
		t.Fatalf("failed to read js/vote.js: %v", err)
	}
	js := string(script)
	if !strings.Contains(js, "/api/session/reset") {
		t.Error("vote.js never calls the reset endpoint")
	}
	if !strings.Contains(js, "confirm(") {
		t.Error("reset must be gated behind a confirmation prompt")
	}
}
