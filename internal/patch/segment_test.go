package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func updateHeader(path string) string  { return UpdatePageStart + path + UpdatePageEnd }
func newPageHeader(path string) string { return NewPageStart + path + NewPageEnd }

func TestSegment_BodiesEndAtNextHeaderOfEitherKind(t *testing.T) {
	text := "intro\n" +
		updateHeader("/") + "\nBODY1\n" +
		newPageHeader("/about.html") + "\nBODY2\n" +
		updateHeader("/x.html") + "\nBODY3"

	segs := Segment(text)

	assert.Equal(t, []Block{
		{Kind: BlockUpdate, TargetPath: "/", Body: "\nBODY1\n"},
		{Kind: BlockUpdate, TargetPath: "/x.html", Body: "\nBODY3"},
	}, segs.Updates)
	assert.Equal(t, []Block{
		{Kind: BlockNewPage, TargetPath: "/about.html", Body: "\nBODY2\n"},
	}, segs.NewPages)
	assert.False(t, segs.Empty())
}

func TestSegment_NoHeaders(t *testing.T) {
	segs := Segment("<p>just html</p>")

	assert.True(t, segs.Empty())
}

func TestSegment_UnterminatedHeaderIsNoBlock(t *testing.T) {
	segs := Segment(UpdatePageStart + "/a.html\n<p>stuff</p>")

	assert.True(t, segs.Empty())
}

func TestSegment_UnterminatedHeaderDoesNotSwallowNext(t *testing.T) {
	text := UpdatePageStart + "/a.html\n" + updateHeader("/b.html") + "\nbody"

	segs := Segment(text)

	require.Len(t, segs.Updates, 1)
	assert.Equal(t, "/b.html", segs.Updates[0].TargetPath)
	assert.Equal(t, "\nbody", segs.Updates[0].Body)
}

func TestSegment_PathTruncatedAtWhitespace(t *testing.T) {
	segs := Segment(updateHeader("/my page.html") + "\nbody")

	require.Len(t, segs.Updates, 1)
	assert.Equal(t, "/my", segs.Updates[0].TargetPath)
}

func TestSegment_SamePathTwice(t *testing.T) {
	text := updateHeader("/") + "\none\n" + updateHeader("/") + "\ntwo"

	segs := Segment(text)

	require.Len(t, segs.Updates, 2)
	assert.Equal(t, "\none\n", segs.Updates[0].Body)
	assert.Equal(t, "\ntwo", segs.Updates[1].Body)
}

func TestExtractHTML_Fenced(t *testing.T) {
	body := "Here you go:\n```html\n<!DOCTYPE html>\n<html></html>\n```\nThanks!"

	assert.Equal(t, "<!DOCTYPE html>\n<html></html>", ExtractHTML(body))
}

func TestExtractHTML_NoFenceIsVerbatim(t *testing.T) {
	body := "  <p>raw</p>\n"

	assert.Equal(t, body, ExtractHTML(body))
}

func TestExtractHTML_UnclosedFence(t *testing.T) {
	assert.Equal(t, "<p>cut", ExtractHTML("\n```html\n<p>cut"))
}

func TestExtractHTML_CodeFenceInsideReplaceIsKept(t *testing.T) {
	body := "\n" + editBody("<p>old</p>", "<pre>```bash\nnpm i\n```</pre>")

	assert.Equal(t, body, ExtractHTML(body))
}

func TestExtractHTML_OtherLanguageFenceIsVerbatim(t *testing.T) {
	body := "```css\nbody { margin: 0 }\n```"

	assert.Equal(t, body, ExtractHTML(body))
}

func TestSegment_HeaderMustCloseOnItsLine(t *testing.T) {
	text := UpdatePageStart + "/a.html\n<p>x</p>" + UpdatePageEnd + "\nbody"

	segs := Segment(text)

	assert.True(t, segs.Empty())
}

func TestSegment_ManyUnterminatedHeaders(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		sb.WriteString(UpdatePageStart + "/broken.html\n")
	}
	sb.WriteString(updateHeader("/ok.html") + "\nbody")

	segs := Segment(sb.String())

	require.Len(t, segs.Updates, 1)
	assert.Equal(t, "/ok.html", segs.Updates[0].TargetPath)
	assert.Equal(t, "\nbody", segs.Updates[0].Body)
}

func TestBlockKind_String(t *testing.T) {
	assert.Equal(t, "update_page", BlockUpdate.String())
	assert.Equal(t, "new_page", BlockNewPage.String())
}
