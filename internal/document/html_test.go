package document

import (
	"strings"
	"testing"
)

const sample = `<html><body>
<p id="title" class="[[cls]]">Contrato [[numero]]</p>
<table><tbody>
<tr id="row"><td>a</td><td>b</td></tr>
</tbody></table>
</body></html>`

func TestElementByID(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	el, ok := doc.ElementByID("row")
	if !ok {
		t.Fatal("row should be found")
	}
	if el.ID() != "row" {
		t.Errorf("expected id row, got %q", el.ID())
	}
	if el.Text() != "ab" {
		t.Errorf("expected text ab, got %q", el.Text())
	}

	if _, ok := doc.ElementByID("missing"); ok {
		t.Error("missing element should not be found")
	}
	if _, ok := doc.ElementByID(""); ok {
		t.Error("empty id should not match")
	}
}

func TestCloneInsertRemove(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	anchor, _ := doc.ElementByID("row")
	for i := 0; i < 2; i++ {
		clone := anchor.Clone()
		if clone.ID() != "" {
			t.Errorf("clone must not keep id, got %q", clone.ID())
		}
		if !anchor.InsertBefore(clone) {
			t.Fatal("insert should succeed")
		}
	}
	anchor.Remove()

	out := doc.BodyHTML()
	if strings.Contains(out, `id="row"`) {
		t.Errorf("anchor should be removed: %s", out)
	}
	if got := strings.Count(out, "<tr>"); got != 2 {
		t.Errorf("expected 2 cloned rows, got %d in %s", got, out)
	}
}

func TestRewrite_TextAndAttributes(t *testing.T) {
	doc, err := ParseString(sample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	changed := doc.Root().Rewrite(func(s string) string {
		s = strings.ReplaceAll(s, "[[numero]]", "42")
		return strings.ReplaceAll(s, "[[cls]]", "bold")
	})
	if changed != 2 {
		t.Errorf("expected 2 changed fragments, got %d", changed)
	}

	out := doc.BodyHTML()
	if !strings.Contains(out, `class="bold"`) {
		t.Errorf("attribute should be rewritten: %s", out)
	}
	if !strings.Contains(out, "Contrato 42") {
		t.Errorf("text should be rewritten: %s", out)
	}
}

func TestString_EscapesListTokens(t *testing.T) {
	doc, err := ParseString(`<p><< $produtos(linhas) >></p>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Root().Text(); got != "<< $produtos(linhas) >>" {
		t.Errorf("list token must survive parsing as text, got %q", got)
	}
	if !strings.Contains(doc.String(), "&lt;&lt; $produtos(linhas) &gt;&gt;") {
		t.Errorf("serialised text should be escaped: %s", doc.String())
	}
}
