package gamexml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrParse indicates a malformed XML document.
var ErrParse = errors.New("malformed XML")

// unitTags lists the element names a unit record can carry. Installed game
// data mixes both across files.
var unitTags = []string{"SpaceUnit", "SkirmishSpaceUnit"}

// templateTags lists the element names a shared template record can carry.
var templateTags = []string{"SpaceUnit"}

// Document is an editable game data file. It wraps the parsed element
// tree together with the path it was loaded from, so a mutated tree can
// be written back in place.
type Document struct {
	path string
	tree *etree.Document
}

// Load parses the XML file at path.
func Load(path string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromFile(path); err != nil {
		if strings.Contains(err.Error(), "XML syntax error") {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &Document{path: path, tree: tree}, nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Save writes the document back to the file it was loaded from.
func (d *Document) Save() error {
	if err := d.tree.WriteToFile(d.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", d.path, err)
	}
	return nil
}

// FindUnit locates a unit record by its Name attribute, trying every
// known unit element name.
func (d *Document) FindUnit(name string) *etree.Element {
	return findNamed(d.tree.Root(), unitTags, name)
}

// FindTemplate locates a shared template record by its Name attribute.
func (d *Document) FindTemplate(name string) *etree.Element {
	return findNamed(d.tree.Root(), templateTags, name)
}

// FindHardpoints returns every HardPoint element whose Name attribute
// contains shipType, case-insensitively.
func (d *Document) FindHardpoints(shipType string) []*etree.Element {
	var out []*etree.Element
	needle := strings.ToLower(shipType)
	walk(d.tree.Root(), func(el *etree.Element) {
		if el.Tag != "HardPoint" {
			return
		}
		if strings.Contains(strings.ToLower(el.SelectAttrValue("Name", "")), needle) {
			out = append(out, el)
		}
	})
	return out
}

// FindHardpoint locates a HardPoint element by exact Name attribute.
func (d *Document) FindHardpoint(name string) *etree.Element {
	return findNamed(d.tree.Root(), []string{"HardPoint"}, name)
}

func findNamed(root *etree.Element, tags []string, name string) *etree.Element {
	if root == nil {
		return nil
	}
	var found *etree.Element
	walk(root, func(el *etree.Element) {
		if found != nil {
			return
		}
		for _, tag := range tags {
			if el.Tag == tag && el.SelectAttrValue("Name", "") == name {
				found = el
				return
			}
		}
	})
	return found
}

func walk(el *etree.Element, fn func(*etree.Element)) {
	if el == nil {
		return
	}
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}

// AllText concatenates every text fragment inside el, descendants
// included. Used to scan encyclopedia blocks for text keys.
func AllText(el *etree.Element) string {
	var sb strings.Builder
	var gather func(*etree.Element)
	gather = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				sb.WriteString(t.Data)
			case *etree.Element:
				gather(t)
			}
		}
	}
	gather(el)
	return sb.String()
}
