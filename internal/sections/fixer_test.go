package sections

import (
	"os/exec"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swupfix/internal/model"
	"swupfix/internal/rewrite"
)

const dir = "/theme/sections"

const faqSection = `<div class="faq">{{ section.settings.title }}</div>
<script>
  function handleResize() {}
  window.addEventListener('swup:contentReplaced', handleResize);
</script>
`

const faqFixed = `<div class="faq">{{ section.settings.title }}</div>
<script>
  function handleResize() {}
  if (window.onSwupContentReplaced) {

    window.onSwupContentReplaced('faq_1', handleResize);

  }
</script>
`

const timelineSection = `<script>
  window.addEventListener('swup:contentReplaced', () => {
    if (document.querySelector('.timeline')) { initTimeline(); }
  });
</script>
`

func newFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, dir+"/"+name, []byte(content), 0o644))
	}
	return fsys
}

func readFile(t *testing.T, fsys afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, dir+"/"+name)
	require.NoError(t, err)
	return string(data)
}

func TestTargets(t *testing.T) {
	f := New(afero.NewMemMapFs(), dir, rewrite.New())
	targets := f.Targets([]string{"404.liquid", "before-after.liquid", "hero-orbit.liquid"})

	assert.Equal(t, []model.Target{
		{File: "404.liquid", Path: "/theme/sections/404.liquid", SectionKey: "404"},
		{File: "before-after.liquid", Path: "/theme/sections/before-after.liquid", SectionKey: "before_after"},
		{File: "hero-orbit.liquid", Path: "/theme/sections/hero-orbit.liquid", SectionKey: "hero_orbit"},
	}, targets)
}

func TestRun(t *testing.T) {
	fsys := newFS(t, map[string]string{
		"faq.liquid":      faqSection,
		"timeline.liquid": timelineSection,
		"page.liquid":     "<div>{{ page.content }}</div>\n",
	})
	f := New(fsys, dir, rewrite.New())

	var seen []string
	sum, err := f.Run(f.Targets([]string{"faq.liquid", "map.liquid", "timeline.liquid", "page.liquid"}), func(r model.FileResult) {
		seen = append(seen, r.Target.File)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Fixed)
	assert.Equal(t, []string{"faq.liquid", "map.liquid", "timeline.liquid", "page.liquid"}, seen)
	require.Len(t, sum.Files, 4)
	assert.Equal(t, model.StatusFixed, sum.Files[0].Status)
	assert.Equal(t, []string{"faq_1"}, sum.Files[0].Keys)
	assert.Equal(t, model.StatusMissing, sum.Files[1].Status)
	assert.Equal(t, model.StatusComplex, sum.Files[2].Status)
	assert.Equal(t, 1, sum.Files[2].Residual)
	assert.Equal(t, model.StatusUnchanged, sum.Files[3].Status)

	assert.Equal(t, faqFixed, readFile(t, fsys, "faq.liquid"))
	assert.Equal(t, timelineSection, readFile(t, fsys, "timeline.liquid"))
	exists, err := afero.Exists(fsys, dir+"/map.liquid")
	require.NoError(t, err)
	assert.False(t, exists, "missing section must not be created")
}

func TestRun_SecondPassIsNoop(t *testing.T) {
	fsys := newFS(t, map[string]string{"faq.liquid": faqSection})
	f := New(fsys, dir, rewrite.New())
	targets := f.Targets([]string{"faq.liquid"})

	sum, err := f.Run(targets, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Fixed)

	sum, err = f.Run(targets, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Fixed)
	assert.Equal(t, model.StatusUnchanged, sum.Files[0].Status)
	assert.Equal(t, faqFixed, readFile(t, fsys, "faq.liquid"))
}

func TestFix_PreservesMode(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, dir+"/faq.liquid", []byte(faqSection), 0o600))

	f := New(fsys, dir, rewrite.New())
	res, err := f.Fix(f.Targets([]string{"faq.liquid"})[0])
	require.NoError(t, err)
	assert.Equal(t, model.StatusFixed, res.Status)

	info, err := fsys.Stat(dir + "/faq.liquid")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())
}

func TestFix_DryRun(t *testing.T) {
	fsys := newFS(t, map[string]string{"faq.liquid": faqSection})
	f := New(fsys, dir, rewrite.New(), WithDryRun(true))

	res, err := f.Fix(f.Targets([]string{"faq.liquid"})[0])
	require.NoError(t, err)
	assert.Equal(t, model.StatusFixed, res.Status)
	assert.True(t, res.DryRun)
	assert.Equal(t, faqSection, readFile(t, fsys, "faq.liquid"))

	if _, err := exec.LookPath("diff"); err == nil {
		assert.Contains(t, res.Diff, "--- a/faq.liquid\n+++ b/faq.liquid\n")
		assert.Contains(t, res.Diff, "-  window.addEventListener('swup:contentReplaced', handleResize);\n")
		assert.Contains(t, res.Diff, "+    window.onSwupContentReplaced('faq_1', handleResize);\n")
	}
}

func TestFix_WriteError(t *testing.T) {
	fsys := afero.NewReadOnlyFs(newFS(t, map[string]string{
		"faq.liquid":  faqSection,
		"page.liquid": "<div></div>\n",
	}))
	f := New(fsys, dir, rewrite.New())

	sum, err := f.Run(f.Targets([]string{"page.liquid", "faq.liquid"}), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fix faq.liquid")
	assert.Len(t, sum.Files, 1, "run stops at the failing file")
}

func TestFix_TruncatedCallback(t *testing.T) {
	fsys := newFS(t, map[string]string{"video.liquid": "<script>\n" +
		"  window.addEventListener('swup:contentReplaced', () => { foo(() => { bar(); }); baz(); });\n" +
		"</script>\n"})
	f := New(fsys, dir, rewrite.New())

	res, err := f.Fix(f.Targets([]string{"video.liquid"})[0])
	require.NoError(t, err)
	assert.Equal(t, model.StatusFixed, res.Status)
	assert.Zero(t, res.Residual)
	assert.Equal(t, []string{"video_1"}, res.Unbalanced)
	assert.Contains(t, readFile(t, fsys, "video.liquid"), "} baz(); });")
}

func TestFix_CustomSuffix(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, dir+"/text-reveal.html",
		[]byte("window.addEventListener('swup:contentReplaced', reveal);"), 0o644))

	f := New(fsys, dir, rewrite.New(), WithSuffix(".html"))
	res, err := f.Fix(f.Targets([]string{"text-reveal.html"})[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"text_reveal_1"}, res.Keys)
}
