// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/net/html/charset"
)

// definitionXML mirrors the root element of a MAVLink message-definition
// file.
type definitionXML struct {
	XMLName  xml.Name      `xml:"mavlink"`
	File     string        `xml:"file,attr"`
	Includes []string      `xml:"include"`
	Version  string        `xml:"version"`
	Dialect  string        `xml:"dialect"`
	Enums    []*enumXML    `xml:"enums>enum"`
	Messages []*messageXML `xml:"messages>message"`
}

type enumXML struct {
	Name        string      `xml:"name,attr"`
	Description string      `xml:"description"`
	Entries     []*entryXML `xml:"entry"`
}

type entryXML struct {
	Name        string `xml:"name,attr"`
	Value       string `xml:"value,attr"`
	Description string `xml:"description"`
}

type fieldXML struct {
	Name        string `xml:"name,attr"`
	Type        string `xml:"type,attr"`
	Enum        string `xml:"enum,attr"`
	Description string `xml:",chardata"`
	Extension   bool   `xml:"-"`
}

type messageXML struct {
	ID          string
	Name        string
	Description string
	Fields      []*fieldXML
}

// UnmarshalXML walks the message children in document order so that fields
// declared after the <extensions/> marker are tagged as extension fields.
func (m *messageXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			m.ID = attr.Value
		case "name":
			m.Name = attr.Value
		}
	}

	extension := false
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "description":
				if err := d.DecodeElement(&m.Description, &t); err != nil {
					return err
				}
			case "extensions":
				extension = true
				if err := d.Skip(); err != nil {
					return err
				}
			case "field":
				f := &fieldXML{Extension: extension}
				if err := d.DecodeElement(f, &t); err != nil {
					return err
				}
				m.Fields = append(m.Fields, f)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// Source is a single named MAVLink definition input.
type Source struct {
	// Name is the caller-supplied file name, used as the source identity when
	// the definition root carries no file attribute.
	Name string

	// Data holds the raw XML bytes.
	Data []byte

	def *definitionXML
	mm  mmap.MMap
	f   *os.File
}

// NewSource wraps an in-memory XML definition.
func NewSource(name string, data []byte) *Source {
	return &Source{Name: name, Data: data}
}

// openSource memory maps a definition file instead of using read/write.
func openSource(p string) (*Source, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Source{
		Name: filepath.Base(p),
		Data: data,
		mm:   data,
		f:    f,
	}, nil
}

// Close unmaps and closes a file-backed source. In-memory sources are a
// no-op.
func (s *Source) Close() error {
	if s.mm != nil {
		_ = s.mm.Unmap()
	}

	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

// parse decodes the XML tree. Definition files in the wild are not always
// UTF-8, so the decoder goes through a charset-aware reader.
func (s *Source) parse() error {
	dec := xml.NewDecoder(bytes.NewReader(s.Data))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return charset.NewReaderLabel(label, input)
	}

	def := &definitionXML{}
	if err := dec.Decode(def); err != nil {
		return fmt.Errorf("decoding %s: %w", s.Name, err)
	}

	s.def = def
	return nil
}

// fileName returns the source identity: the file attribute of the root
// element when present, the caller-supplied name otherwise.
func (s *Source) fileName() (string, error) {
	if s.def != nil && s.def.File != "" {
		return s.def.File, nil
	}
	if s.Name != "" {
		return s.Name, nil
	}
	return "", ErrMissingFileIdentity
}

// checkIncludes verifies that the include closure is complete: every file
// referenced by an <include> of any source must itself be present among the
// loaded sources. Includes are matched on their base file name; no transitive
// expansion happens, dialects compile independently and merge downstream.
func checkIncludes(sources []*Source) error {
	var names []string
	for _, s := range sources {
		name, err := s.fileName()
		if err != nil {
			return err
		}
		names = append(names, path.Base(name))
	}

	for i, s := range sources {
		for _, inc := range s.def.Includes {
			inc = path.Base(strings.TrimSpace(inc))
			if inc == "" {
				continue
			}
			if !stringInSlice(inc, names) {
				return fmt.Errorf("%w: %s (included by %s)",
					ErrMissingInclude, inc, names[i])
			}
		}
	}
	return nil
}
