package docfill

import (
	"strings"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/render"
	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

// ParagraphFiller substitutes the placeholders of a paragraph.
type ParagraphFiller struct {
	chain *Chain
}

// NewParagraphFiller creates a paragraph filler dispatching to chain.
func NewParagraphFiller(chain *Chain) *ParagraphFiller {
	return &ParagraphFiller{chain: chain}
}

// Fill rewrites para with every placeholder resolved. The paragraph's runs are
// read as one text, so a placeholder split across runs is still found, and
// are replaced by a single run carrying the first run's formatting. A
// paragraph without "${" is left untouched.
func (f *ParagraphFiller) Fill(para *xml.Paragraph, data Data) {
	text := para.GetText()
	if !strings.Contains(text, "${") {
		return
	}
	render.CollapseRuns(para, f.chain.ProcessText(text, data))
}
