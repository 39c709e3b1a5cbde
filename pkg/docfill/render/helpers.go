package render

import (
	"github.com/mitchellh/copystructure"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

// CloneRunProperties returns a deep copy of props, or nil.
func CloneRunProperties(props *xml.RunProperties) *xml.RunProperties {
	if props == nil {
		return nil
	}
	copied, err := copystructure.Copy(props)
	if err != nil {
		// Run properties hold only strings and pointers to plain structs
		panic(err)
	}
	return copied.(*xml.RunProperties)
}

// FirstRunProperties returns the formatting of the paragraph's first run.
func FirstRunProperties(para *xml.Paragraph) *xml.RunProperties {
	for _, content := range para.Content {
		if run, ok := content.(*xml.Run); ok {
			return run.Properties
		}
	}
	return nil
}

// fieldMarkup is dropped when runs collapse. A field's displayed result is
// already part of the paragraph text.
var fieldMarkup = map[string]bool{
	"w:fldChar":   true,
	"w:instrText": true,
}

// CollapseRuns replaces every run of para with a single run holding text and
// a copy of the first run's formatting. Preserved run content such as drawings
// moves into the new run ahead of the text. Non-run content keeps its position.
func CollapseRuns(para *xml.Paragraph, text string) {
	run := &xml.Run{Properties: CloneRunProperties(FirstRunProperties(para))}
	for _, r := range para.Runs() {
		for _, content := range r.Content {
			raw, ok := content.(*xml.RawXMLElement)
			if !ok || fieldMarkup[raw.Name] {
				continue
			}
			copied := *raw
			run.Content = append(run.Content, &copied)
		}
	}
	run.SetText(text)
	para.ReplaceRuns(run)
}
