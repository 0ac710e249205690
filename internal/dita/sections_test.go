package dita

import "testing"

func TestSplitSections_Overview(t *testing.T) {
	got := SplitSections("---\ntitle: X\n---\n\n# X\n\nBody text.\n\n### Minor\n")
	if len(got) != 1 {
		t.Fatalf("sections = %d, want 1", len(got))
	}
	if got[0].Title != "Overview" {
		t.Errorf("title = %q, want Overview", got[0].Title)
	}
	if got[0].Content != "Body text.\n\n### Minor" {
		t.Errorf("content = %q", got[0].Content)
	}
}

func TestSplitSections_TableOfContentsDropped(t *testing.T) {
	for _, title := range []string{"Table of Contents", "TABLE OF CONTENTS", "table of contents"} {
		got := SplitSections("# T\n\n## " + title + "\n\n- [A](#a)\n\n## A\n\nText.\n")
		if len(got) != 1 || got[0].Title != "A" {
			t.Errorf("%q: sections = %+v", title, got)
		}
	}
}

func TestSplitSections_EmptyDropped(t *testing.T) {
	got := SplitSections("## Empty\n\n## Full\n\nx\n")
	if len(got) != 1 || got[0].Title != "Full" || got[0].Content != "x" {
		t.Errorf("sections = %+v", got)
	}
}

func TestSplitSections_IgnoresHeadingsInFences(t *testing.T) {
	got := SplitSections("## Script\n\n```bash\n## not a heading\necho\n```\n\n## Next\n\ny\n")
	if len(got) != 2 {
		t.Fatalf("sections = %+v", got)
	}
	if got[0].Content != "```bash\n## not a heading\necho\n```" {
		t.Errorf("content = %q", got[0].Content)
	}
}

func TestSplitSections_PreambleNotASection(t *testing.T) {
	got := SplitSections("Intro.\n\n## One\n\nBody.\n")
	if len(got) != 1 || got[0].Title != "One" || got[0].Content != "Body." {
		t.Errorf("sections = %+v", got)
	}
}
