package export

import (
	"strings"
	"testing"
)

func TestPrintOptions(t *testing.T) {
	opts := PrintOptions()

	if !opts.PrintBackground {
		t.Error("background must be printed")
	}
	if opts.PaperWidth == nil || *opts.PaperWidth != a4Width {
		t.Errorf("expected A4 width, got %v", opts.PaperWidth)
	}
	if opts.PaperHeight == nil || *opts.PaperHeight != a4Height {
		t.Errorf("expected A4 height, got %v", opts.PaperHeight)
	}
	if opts.MarginTop == nil || *opts.MarginTop != margin {
		t.Errorf("expected margin %v, got %v", margin, opts.MarginTop)
	}
}

func TestDocument(t *testing.T) {
	doc := Document(`Contrato <CT-1> & "Cia"`, "<p>corpo</p>")

	if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %s", doc)
	}
	if !strings.Contains(doc, "<title>Contrato &lt;CT-1&gt; &amp; &#34;Cia&#34;</title>") {
		t.Errorf("title must be escaped: %s", doc)
	}
	if !strings.Contains(doc, "<body><p>corpo</p></body>") {
		t.Errorf("body must be embedded verbatim: %s", doc)
	}
}
