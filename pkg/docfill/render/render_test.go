package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

func paragraph(texts ...string) *xml.Paragraph {
	para := &xml.Paragraph{}
	for i, text := range texts {
		var props *xml.RunProperties
		if i == 0 {
			props = &xml.RunProperties{Bold: &xml.Toggle{}, Color: &xml.Color{Val: "00FF00"}}
		}
		para.AppendRun(xml.NewRun(text, props))
	}
	return para
}

func row(cells ...string) *xml.TableRow {
	r := &xml.TableRow{Properties: &xml.RawXMLElement{Name: "w:trPr"}}
	for _, text := range cells {
		r.Cells = append(r.Cells, &xml.TableCell{
			Properties: &xml.RawXMLElement{Name: "w:tcPr", Inner: `<w:tcW w:w="2000"></w:tcW>`},
			Content:    []xml.BodyElement{paragraph(text)},
		})
	}
	return r
}

func TestCollapseRuns(t *testing.T) {
	para := paragraph("Hello ${us", "er.name}", "!")
	first := FirstRunProperties(para)

	CollapseRuns(para, "Hello Ann!")

	runs := para.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Hello Ann!", runs[0].GetText())
	require.NotNil(t, runs[0].Properties)
	assert.True(t, runs[0].Properties.Bold.Enabled())
	assert.Equal(t, "00FF00", runs[0].Properties.Color.Val)
	assert.NotSame(t, first, runs[0].Properties)
}

func TestCollapseRunsKeepsPreservedContent(t *testing.T) {
	logo := &xml.RawXMLElement{Name: "w:drawing", Inner: `<wp:inline></wp:inline>`}
	chart := &xml.RawXMLElement{Name: "w:drawing", Inner: `<wp:anchor></wp:anchor>`}

	first := xml.NewRun("${name} ", &xml.RunProperties{Bold: &xml.Toggle{}})
	first.Content = append([]xml.RunContent{logo}, first.Content...)
	second := xml.NewRun("", nil)
	second.Content = []xml.RunContent{
		&xml.RawXMLElement{Name: "w:fldChar"},
		&xml.RawXMLElement{Name: "w:instrText", Inner: " PAGE "},
		chart,
		&xml.Text{Content: "1"},
	}
	para := &xml.Paragraph{}
	para.AppendRun(first)
	para.AppendRun(second)

	CollapseRuns(para, "Ann 1")

	runs := para.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Ann 1", runs[0].GetText())
	assert.True(t, runs[0].Properties.Bold.Enabled())

	var names []string
	for _, content := range runs[0].Content {
		if raw, ok := content.(*xml.RawXMLElement); ok {
			names = append(names, raw.Name+raw.Inner)
		}
	}
	assert.Equal(t, []string{"w:drawing<wp:inline></wp:inline>", "w:drawing<wp:anchor></wp:anchor>"}, names)
	_, isRaw := runs[0].Content[0].(*xml.RawXMLElement)
	assert.True(t, isRaw, "preserved content comes before the text")
}

func TestCollapseRunsWithoutRuns(t *testing.T) {
	para := &xml.Paragraph{}
	CollapseRuns(para, "plain")

	runs := para.Runs()
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Properties)
	assert.Equal(t, "plain", para.GetText())
}

func TestFindTemplateRow(t *testing.T) {
	tests := []struct {
		name    string
		rows    []*xml.TableRow
		wantIdx int
		wantKey string
	}{
		{
			name:    "marker in second row",
			rows:    []*xml.TableRow{row("Name", "Qty"), row("${list:items}${name}", "${qty}")},
			wantIdx: 1,
			wantKey: "items",
		},
		{
			name:    "marker in later cell",
			rows:    []*xml.TableRow{row("${name}", "${list: order.lines }")},
			wantIdx: 0,
			wantKey: "order.lines",
		},
		{
			name:    "no marker",
			rows:    []*xml.TableRow{row("a", "b")},
			wantIdx: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, key := FindTemplateRow(tt.rows)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantIdx >= 0, IsDynamicTable(&xml.Table{Rows: tt.rows}))
		})
	}
}

func TestStripListMarkers(t *testing.T) {
	r := row("${list:items}${name}", "${qty}")
	StripListMarkers(r)

	assert.Equal(t, "${name}${qty}", r.GetText())
	assert.True(t, r.Cells[0].Paragraphs()[0].Runs()[0].Properties.Bold.Enabled())
}

func TestCloneRow(t *testing.T) {
	original := row("${name}", "${qty}")

	clone, err := CloneRow(original)
	require.NoError(t, err)
	require.Len(t, clone.Cells, 2)
	assert.Equal(t, original.GetText(), clone.GetText())
	assert.Equal(t, original.Cells[0].Properties.Inner, clone.Cells[0].Properties.Inner)

	CollapseRuns(clone.Cells[0].Paragraphs()[0], "changed")
	assert.Equal(t, "${name}${qty}", original.GetText())
	assert.Equal(t, "changed${qty}", clone.GetText())
}

func TestRowSliceHelpers(t *testing.T) {
	a, b, c := row("a"), row("b"), row("c")

	rows := InsertRows([]*xml.TableRow{a, c}, 0, []*xml.TableRow{b})
	require.Len(t, rows, 3)
	assert.Same(t, b, rows[1])

	rows = RemoveRow(rows, 1)
	require.Len(t, rows, 2)
	assert.Same(t, a, rows[0])
	assert.Same(t, c, rows[1])

	assert.Len(t, RemoveRow(rows, 5), 2)
}

func TestWalkParagraphs(t *testing.T) {
	table := &xml.Table{Rows: []*xml.TableRow{row("x", "y")}}
	elements := []xml.BodyElement{paragraph("one"), table, &xml.RawXMLElement{Name: "w:sdt"}, paragraph("two")}

	var locations []string
	WalkParagraphs(elements, func(para *xml.Paragraph, location string) {
		locations = append(locations, location+"="+para.GetText())
	})

	assert.Equal(t, []string{
		"p[0]=one",
		"tbl[0]/tr[0]/tc[0]/p[0]=x",
		"tbl[0]/tr[0]/tc[1]/p[0]=y",
		"p[1]=two",
	}, locations)
}

func TestFindTemplateRowIgnoresNestedTables(t *testing.T) {
	inner := &xml.Table{Rows: []*xml.TableRow{row("${list:items}")}}
	outer := row("title")
	outer.Cells[0].Content = append(outer.Cells[0].Content, inner)

	idx, _ := FindTemplateRow([]*xml.TableRow{outer})
	assert.Equal(t, -1, idx)
	assert.False(t, IsDynamicTable(&xml.Table{Rows: []*xml.TableRow{outer}}))
	assert.True(t, IsDynamicTable(inner))
}
