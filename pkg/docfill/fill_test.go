package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docxml "github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

func newTestFillers() (*ParagraphFiller, *TableFiller) {
	paragraphs := NewParagraphFiller(testChain())
	return paragraphs, NewTableFiller(paragraphs, DefaultResolver())
}

func TestParagraphFillerCollapsesRuns(t *testing.T) {
	elements := parseBody(t, boldPara("Hello ${user.", "name}", ", age ${user.age}"))
	p := elements[0].(*docxml.Paragraph)
	require.Len(t, p.Runs(), 3)

	paragraphs, _ := newTestFillers()
	paragraphs.Fill(p, Data{"user": map[string]interface{}{"name": "Ann", "age": 30}})

	runs := p.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Hello Ann, age 30", runs[0].GetText())
	require.NotNil(t, runs[0].Properties)
	assert.True(t, runs[0].Properties.Bold.Enabled())
	assert.Nil(t, runs[0].Properties.Italic)
	require.NotNil(t, runs[0].Properties.Size)
	assert.Equal(t, "28", runs[0].Properties.Size.Val)
}

func TestParagraphFillerWithoutPlaceholders(t *testing.T) {
	elements := parseBody(t, boldPara("plain ", "text"))
	p := elements[0].(*docxml.Paragraph)

	paragraphs, _ := newTestFillers()
	paragraphs.Fill(p, Data{"x": 1})

	assert.Len(t, p.Runs(), 2)
	assert.Equal(t, "plain text", p.GetText())
}

func TestParagraphFillerKeepsInlineContent(t *testing.T) {
	body := `<w:p><w:bookmarkStart w:id="1" w:name="b"/><w:r><w:t>${a}</w:t></w:r><w:r><w:t>${b}</w:t></w:r><w:bookmarkEnd w:id="1"/></w:p>`
	p := parseBody(t, body)[0].(*docxml.Paragraph)

	paragraphs, _ := newTestFillers()
	paragraphs.Fill(p, Data{"a": "x", "b": "y"})

	require.Len(t, p.Content, 3)
	assert.IsType(t, &docxml.RawXMLElement{}, p.Content[0])
	assert.IsType(t, &docxml.Run{}, p.Content[1])
	assert.IsType(t, &docxml.RawXMLElement{}, p.Content[2])
	assert.Equal(t, "xy", p.GetText())
}

func TestParagraphFillerLineBreaks(t *testing.T) {
	p := parseBody(t, para("${text}"))[0].(*docxml.Paragraph)

	paragraphs, _ := newTestFillers()
	paragraphs.Fill(p, Data{"text": "one\ntwo\tthree"})

	assert.Equal(t, "one\ntwo\tthree", p.GetText())
	run := p.Runs()[0]
	assert.IsType(t, &docxml.Break{}, run.Content[1])
	assert.IsType(t, &docxml.Tab{}, run.Content[3])
}

func TestTableFillerStatic(t *testing.T) {
	tbl := tables(parseBody(t, table([]string{"Name", "${name}"})))[0]

	_, filler := newTestFillers()
	require.NoError(t, filler.Fill(tbl, Data{"name": "Ann"}))

	assert.Equal(t, [][]string{{"Name", "Ann"}}, rowTexts(tbl))
}

func TestTableFillerDynamic(t *testing.T) {
	tmpl := table(
		[]string{"Product", "Price"},
		[]string{"${list:items}${name}", "${price:0.00}"},
		[]string{"Total", "${total}"},
	)

	tests := []struct {
		name  string
		items interface{}
		want  [][]string
	}{
		{
			name:  "empty list removes template row",
			items: []interface{}{},
			want:  [][]string{{"Product", "Price"}, {"Total", "9"}},
		},
		{
			name:  "one item",
			items: []map[string]interface{}{{"name": "Widget", "price": 2}},
			want:  [][]string{{"Product", "Price"}, {"Widget", "2.00"}, {"Total", "9"}},
		},
		{
			name: "three items",
			items: []map[string]interface{}{
				{"name": "Widget", "price": 2},
				{"name": "Gadget", "price": 3.5},
				{"name": "Gizmo", "price": 3.5},
			},
			want: [][]string{{"Product", "Price"}, {"Widget", "2.00"}, {"Gadget", "3.50"}, {"Gizmo", "3.50"}, {"Total", "9"}},
		},
		{
			name:  "not a list fills statically",
			items: "oops",
			want:  [][]string{{"Product", "Price"}, {"", ""}, {"Total", "9"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := tables(parseBody(t, tmpl))[0]

			_, filler := newTestFillers()
			require.NoError(t, filler.Fill(tbl, Data{"items": tt.items, "total": 9}))

			assert.Equal(t, tt.want, rowTexts(tbl))
			for _, row := range tbl.Rows {
				assert.NotContains(t, row.GetText(), "${list:")
			}
		})
	}
}

func TestTableFillerCopiesFormatting(t *testing.T) {
	tbl := tables(parseBody(t, table([]string{"${list:rows}${item}", "${index}"})))[0]

	_, filler := newTestFillers()
	require.NoError(t, filler.Fill(tbl, Data{"rows": []string{"a", "b", "c"}}))

	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, [][]string{{"a", "0"}, {"b", "1"}, {"c", "2"}}, rowTexts(tbl))
	for _, row := range tbl.Rows {
		require.Len(t, row.Cells, 2)
		for _, cell := range row.Cells {
			require.NotNil(t, cell.Properties)
			assert.Contains(t, cell.Properties.Inner, `w:w="3000"`)
			run := cell.Paragraphs()[0].Runs()[0]
			require.NotNil(t, run.Properties)
			assert.True(t, run.Properties.Bold.Enabled())
		}
	}

	// Generated rows do not share structure
	tbl.Rows[1].Cells[0].Paragraphs()[0].Runs()[0].Properties.Bold = nil
	assert.NotNil(t, tbl.Rows[2].Cells[0].Paragraphs()[0].Runs()[0].Properties.Bold)
}

func TestTableFillerRowBindings(t *testing.T) {
	tbl := tables(parseBody(t, table([]string{"${list:rows}${if:isFirst}first${/if}${if:isLast}last${/if}"})))[0]

	_, filler := newTestFillers()
	require.NoError(t, filler.Fill(tbl, Data{"rows": []int{1, 2, 3}}))

	assert.Equal(t, [][]string{{"first"}, {""}, {"last"}}, rowTexts(tbl))
}

func TestTableFillerOnlyFirstMarkerExpands(t *testing.T) {
	tbl := tables(parseBody(t, table(
		[]string{"${list:a}${item}"},
		[]string{"${list:b}${item}"},
	)))[0]

	_, filler := newTestFillers()
	require.NoError(t, filler.Fill(tbl, Data{"a": []string{"x", "y"}, "b": []string{"z"}, "item": "outer"}))

	assert.Equal(t, [][]string{{"x"}, {"y"}, {"outer"}}, rowTexts(tbl))
}

func TestTableFillerNestedTable(t *testing.T) {
	inner := table([]string{"${list:items}${item}"})
	body := `<w:tbl><w:tr><w:tc>` + para("${title}") + inner + `</w:tc></w:tr></w:tbl>`
	tbl := tables(parseBody(t, body))[0]

	_, filler := newTestFillers()
	require.NoError(t, filler.Fill(tbl, Data{"title": "List", "items": []string{"a", "b"}}))

	cell := tbl.Rows[0].Cells[0]
	assert.Equal(t, "List", cell.Paragraphs()[0].GetText())
	nested := tables(cell.Content)
	require.Len(t, nested, 1)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, rowTexts(nested[0]))
}

func TestFillElementsIdempotent(t *testing.T) {
	body := para("Hello ${name}") + table([]string{"${list:rows}${item}"})
	elements := parseBody(t, body)
	data := Data{"name": "Ann", "rows": []string{"a", "b"}}

	_, filler := newTestFillers()
	require.NoError(t, filler.FillElements(elements, data))

	first, err := docxml.MarshalDocument(&docxml.Document{Name: "w:document", Body: &docxml.Body{Elements: elements}})
	require.NoError(t, err)

	require.NoError(t, filler.FillElements(elements, data))
	second, err := docxml.MarshalDocument(&docxml.Document{Name: "w:document", Body: &docxml.Body{Elements: elements}})
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, []string{"Hello Ann"}, paragraphTexts(elements))
}
