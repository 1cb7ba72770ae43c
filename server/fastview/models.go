// fastview implements a builder pattern to implement simple views:
// given an input data format, apply a transformation to a view-model,
// and then multiplex that data to one or more views.
package fastview

import (
	"html/template"
	"slices"
)

// EleUpdate is an element identifier and a set of operations to apply to its attributes/content.
type EleUpdate struct {
	// The id by which to find the element
	EleId string
	// Op keys are attrib keys or 'textContent', values are the strings to which these are set.
	// Example: ('cx','123') means 'set attribute cx to 123'. 'textContent' is a reserved key:
	// ('textContent','abc') means 'set ele.textContent to abc'.
	Ops []Op
}

// Op is a key and value. For example an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// TextContent is the reserved op key for setting an element's text.
const TextContent = "textContent"

// SetText returns an update setting the text of an element.
func SetText(eleId, text string) EleUpdate {
	return EleUpdate{
		EleId: eleId,
		Ops:   []Op{{Key: TextContent, Value: text}},
	}
}

// SetAttrs returns an update setting attributes of an element from alternating keys and values.
func SetAttrs(eleId string, keyVals ...string) EleUpdate {
	update := EleUpdate{EleId: eleId}
	for i := 0; i+1 < len(keyVals); i += 2 {
		update.Ops = append(update.Ops, Op{Key: keyVals[i], Value: keyVals[i+1]})
	}
	return update
}

// ViewComponent implements server side views: Parse to define their initial form
// in the page template and Updates to obtain the chan by which ele-updates are notified.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse parses the view-component and adds it to the passed parent template, thus inheriting
	// or possibly extending its definition (func-map, etc). It returns the defined template's name.
	Parse(*template.Template) (string, error)
}

// Differ drops ele-updates identical to the last update passed for the same element,
// so that views can describe their full state every frame but only send what changed.
// A Differ is not safe for concurrent use.
type Differ struct {
	last map[string][]Op
}

func NewDiffer() *Differ {
	return &Differ{last: map[string][]Op{}}
}

// Filter returns the subset of updates that differ from those previously seen.
func (d *Differ) Filter(updates []EleUpdate) (changed []EleUpdate) {
	for _, update := range updates {
		if prev, ok := d.last[update.EleId]; ok && slices.Equal(prev, update.Ops) {
			continue
		}
		d.last[update.EleId] = update.Ops
		changed = append(changed, update)
	}
	return
}
