package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swupfix/internal/model"
)

func target(name, key string) model.Target {
	return model.Target{File: name, Path: "/sections/" + name, SectionKey: key}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Header("swup:contentReplaced")
	files := []model.FileResult{
		{Target: target("faq.liquid", "faq"), Status: model.StatusFixed, Replacements: 1, Keys: []string{"faq_1"}},
		{Target: target("map.liquid", "map"), Status: model.StatusMissing},
		{Target: target("timeline.liquid", "timeline"), Status: model.StatusComplex, Residual: 1},
		{Target: target("page.liquid", "page"), Status: model.StatusUnchanged},
		{Target: target("video.liquid", "video"), Status: model.StatusFixed, Replacements: 1, Residual: 2},
		{Target: target("team.liquid", "team"), Status: model.StatusFixed, Replacements: 2, Unbalanced: []string{"team_2"}},
	}
	for _, f := range files {
		p.File(f)
	}
	p.Summary(model.Summary{Files: files, Fixed: 3})

	want := "Fixing swup:contentReplaced listeners...\n" +
		"  ✓ Fixed faq.liquid\n" +
		"  ⚠ timeline.liquid has complex patterns, may need manual fix\n" +
		"  ✓ Fixed video.liquid\n" +
		"  ⚠ video.liquid still has 2 unmatched listener(s), may need manual fix\n" +
		"  ✓ Fixed team.liquid\n" +
		"  ⚠ team.liquid listener team_2 has nested braces and was cut short, needs manual fix\n" +
		"\nFixed 3 files\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_DryRun(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.File(model.FileResult{
		Target: target("faq.liquid", "faq"),
		Status: model.StatusFixed,
		DryRun: true,
		Diff:   "--- a/faq.liquid\n+++ b/faq.liquid\n@@ -1 +1,3 @@\n-old\n+new\n",
	})
	p.Summary(model.Summary{Fixed: 1, DryRun: true})

	want := "  ✓ Would fix faq.liquid\n" +
		"    --- a/faq.liquid\n" +
		"    +++ b/faq.liquid\n" +
		"    @@ -1 +1,3 @@\n" +
		"    -old\n" +
		"    +new\n" +
		"\nWould fix 1 files\n"
	assert.Equal(t, want, buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	sum := model.Summary{
		Files: []model.FileResult{
			{Target: target("faq.liquid", "faq"), Status: model.StatusFixed, Replacements: 2, Keys: []string{"faq_1", "faq_2"}},
		},
		Fixed: 1,
	}
	require.NoError(t, JSON(&buf, sum))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 1, got["fixed"])
	file := got["files"].([]any)[0].(map[string]any)
	assert.Equal(t, "fixed", file["status"])
	assert.Equal(t, "faq", file["target"].(map[string]any)["section_key"])
	assert.Equal(t, []any{"faq_1", "faq_2"}, file["keys"])
}
