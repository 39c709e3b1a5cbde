// Package xml provides the document tree that go-docfill fills: WordprocessingML
// paragraphs, runs and tables, plus the header and footer parts that share the
// same block structure.
//
// # Structure Organization
//
//   - types.go: core interfaces (BodyElement, ParagraphContent, RunContent) and
//     RawXMLElement, the verbatim carrier for every element the engine does not model
//   - document.go: Document, Body and Part (header/footer roots)
//   - paragraph.go: Paragraph and paragraph-level text helpers
//   - run.go: Run, RunProperties, Text, Break and Tab
//   - table.go: Table, TableRow and TableCell
//
// # Key Concepts
//
// Run: a contiguous span of text with one set of formatting properties. Word splits
// text into runs freely (spell checking, revision ids, partial formatting), so a
// placeholder may straddle several runs; callers work on Paragraph.GetText and
// rewrite the whole paragraph.
//
// RawXMLElement: drawings, bookmarks, section properties, paragraph and cell
// properties are kept as raw XML and written back unchanged. Names and attributes
// are stored with their conventional prefixes (w:, r:, wp:, ...) so the output uses
// the namespace declarations of the original root element.
//
// Example of building a paragraph by hand:
//
//	para := &xml.Paragraph{}
//	para.AppendRun(xml.NewRun("Hello, ${user.name}", nil))
//	fmt.Println(para.GetText()) // Hello, ${user.name}
package xml
