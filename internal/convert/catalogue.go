package convert

import (
	"fmt"

	"arena/internal/typesys"
)

// Converter is one entry of the conversion catalogue.
type Converter interface {
	Name() string
	CanConvert(from, to typesys.Type) bool
	Convert(v any, to typesys.Type) (any, error)
}

// Catalogue is a fixed, ordered set of converters. It is read-only after
// construction and safe for concurrent use.
type Catalogue struct {
	entries []Converter
}

// NewCatalogue creates a catalogue from the given entries; earlier entries win.
func NewCatalogue(entries ...Converter) *Catalogue {
	return &Catalogue{entries: entries}
}

// NewDefaultCatalogue creates the standard catalogue. Text is UTF-8.
func NewDefaultCatalogue() *Catalogue {
	bs := bytesString()
	cs := charsString()
	ss := stringStream()
	return NewCatalogue(
		bs,
		wrappedBytesString(),
		cs,
		wrappedCharsString(),
		bytesStream(),
		ss,
		composed("byte[]<->char[]", isBytes, isChars, bs, cs),
		composed("char[]<->stream", isChars, isStream, cs, ss),
		listArray(),
		primitiveWrapperArray(),
		objectArrays{},
		primitiveObjectArray(),
	)
}

// Lookup returns the first converter able to convert from into to. Equal
// types never need a converter.
func (c *Catalogue) Lookup(from, to typesys.Type) (Converter, bool) {
	if from.Equal(to) {
		return nil, false
	}
	for _, e := range c.entries {
		if e.CanConvert(from, to) {
			return e, true
		}
	}
	return nil, false
}

func (c *Catalogue) CanConvert(from, to typesys.Type) bool {
	_, ok := c.Lookup(from, to)
	return ok
}

// Convert converts v from one type to another using the first matching entry.
func (c *Catalogue) Convert(v any, from, to typesys.Type) (any, error) {
	e, ok := c.Lookup(from, to)
	if !ok {
		return nil, fmt.Errorf("no converter from %s to %s", from, to)
	}
	return e.Convert(v, to)
}

// Entries lists the catalogue entries in lookup order.
func (c *Catalogue) Entries() []Converter {
	return append([]Converter(nil), c.entries...)
}
