package render

import (
	"strconv"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

// ParagraphVisitor is called for each paragraph reached by WalkParagraphs.
// location describes where the paragraph sits, e.g. "p[2]" or "tbl[0]/tr[1]/tc[0]/p[0]".
type ParagraphVisitor func(para *xml.Paragraph, location string)

// WalkParagraphs visits every paragraph in elements, descending into tables.
func WalkParagraphs(elements []xml.BodyElement, visit ParagraphVisitor) {
	walk(elements, "", visit)
}

func walk(elements []xml.BodyElement, prefix string, visit ParagraphVisitor) {
	paraIdx, tableIdx := 0, 0
	for _, elem := range elements {
		switch el := elem.(type) {
		case *xml.Paragraph:
			visit(el, prefix+"p["+strconv.Itoa(paraIdx)+"]")
			paraIdx++
		case *xml.Table:
			tablePrefix := prefix + "tbl[" + strconv.Itoa(tableIdx) + "]"
			for r, row := range el.Rows {
				for c, cell := range row.Cells {
					walk(cell.Content, tablePrefix+"/tr["+strconv.Itoa(r)+"]/tc["+strconv.Itoa(c)+"]/", visit)
				}
			}
			tableIdx++
		}
	}
}
