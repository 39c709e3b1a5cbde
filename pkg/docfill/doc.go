// Package docfill fills DOCX templates from a data context.
//
// Basic Usage:
//
//	tmpl, err := docfill.PrepareFile("letter.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	output, err := tmpl.Render(docfill.Data{
//	    "user":  map[string]interface{}{"name": "Ann", "age": 30},
//	    "items": []map[string]interface{}{{"name": "Widget", "price": 19.99}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Template Syntax:
//
// Values: ${user.name}, ${items[0].price}, ${price:0.00}, ${date:dd.MM.yyyy}
//
// Conditionals: ${if:user.active && role == "admin"}...${/if}. Conditions
// combine &&, ||, a leading ! and == or != over literals and key paths; a bare
// key path is tested for truthiness.
//
// Loops: ${foreach:items}${name} ${/foreach}, with item, index, isFirst and
// isLast bound inside the loop.
//
// Arithmetic: ${math:price * quantity}, ${math:round(total) / 3}. Operators are
// applied left to right without precedence.
//
// Tables: a row containing ${list:items} is repeated once per element of
// items, and removed when items is empty.
//
// Placeholders are resolved in the body, headers and footers. A paragraph
// that contains a placeholder is rewritten as a single run with the
// formatting of its first run.
package docfill
