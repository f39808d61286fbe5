package docs

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestAPIReferenceRendersEveryEndpoint(t *testing.T) {
	endpoints := Endpoints()
	var buf bytes.Buffer
	if err := APIReference(endpoints).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render api reference: %v", err)
	}
	out := buf.String()
	for _, endpoint := range endpoints {
		if !strings.Contains(out, endpoint.Path) {
			t.Fatalf("expected output to document %s %s", endpoint.Method, endpoint.Path)
		}
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("expected a full html document, got %q", out[:20])
	}
}

func TestEndpointRowEscapesContent(t *testing.T) {
	var buf bytes.Buffer
	row := endpointRow(Endpoint{Method: "GET", Path: "/x", Summary: "<script>alert(1)</script>", Auth: true})
	if err := row.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render row: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected summary to be escaped: %s", out)
	}
	if !strings.Contains(out, `data-auth="session"`) {
		t.Fatalf("expected session marker: %s", out)
	}
}
