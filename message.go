// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mavflow/dialect/log"
)

var reTypeIsArray = regexp.MustCompile(`^(.+?)\[([0-9]+)\]$`)

// Field describes a single message field.
type Field struct {
	// Name is the field name as declared in the definition.
	Name string `json:"name"`

	// Key is the normalized lookup key used in message records.
	Key string `json:"key"`

	// Type is the MAVLink base type, with any array suffix stripped.
	Type string `json:"type"`

	// Enum is the normalized key of the enum group bound to this field,
	// empty when the field is a plain numeric.
	Enum string `json:"enum,omitempty"`

	// ArrayLen is the declared array length, 0 for scalars.
	ArrayLen int `json:"array_len,omitempty"`

	// Extension reports whether the field was declared after the
	// <extensions/> marker.
	Extension bool `json:"extension,omitempty"`
}

// size returns the encoded size of the field.
func (f *Field) size() int {
	n := f.ArrayLen
	if n == 0 {
		n = 1
	}
	return typeInfos[f.Type].size * n
}

// fieldCodec carries the precomputed wire position of one field together
// with its primitive reader and writer.
type fieldCodec struct {
	field  *Field
	info   *typeInfo
	offset int
}

// Message is the compiled codec for a single message definition. It is
// immutable once compilation completes and safe for concurrent use.
type Message struct {
	// ID is the numeric message id, unique across the merged dialect.
	ID uint32 `json:"id"`

	// Name is the message name as declared.
	Name string `json:"name"`

	// Key is the normalized message name.
	Key string `json:"key"`

	// Fields holds the regular fields in wire order: stable-sorted so larger
	// types come first, declaration order preserved within a size class.
	Fields []*Field `json:"fields,omitempty"`

	// Extensions holds the extension fields in declaration order.
	Extensions []*Field `json:"extensions,omitempty"`

	// PayloadSize is the encoded size of the regular fields.
	PayloadSize int `json:"payload_size"`

	// ExtendedPayloadSize is PayloadSize plus the encoded size of the
	// extension fields.
	ExtendedPayloadSize int `json:"extended_payload_size"`

	// CRCExtra is the seed byte XORed into the frame checksum so receivers
	// detect schema mismatches. Extension fields never contribute to it.
	CRCExtra byte `json:"crc_extra"`

	codecs    []fieldCodec
	extCodecs []fieldCodec
	defaults  map[string]interface{}
	tables    *enumTables
}

// compileField resolves one XML field declaration against the primitive
// registry.
func compileField(f *fieldXML, msgName string) (*Field, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("%w: field without a name in message %s",
			ErrNullIdentifier, msgName)
	}

	typ := strings.TrimSpace(f.Type)
	arrayLen := 0
	if matches := reTypeIsArray.FindStringSubmatch(typ); matches != nil {
		n, err := strconv.Atoi(matches[2])
		if err != nil {
			return nil, fmt.Errorf("%w: array length of field %s in message %s",
				ErrNotAnInteger, f.Name, msgName)
		}
		typ = matches[1]
		arrayLen = n
	}

	if _, ok := typeInfos[typ]; !ok {
		return nil, fmt.Errorf("%w: %q on field %s of message %s",
			ErrUnknownType, typ, f.Name, msgName)
	}

	field := &Field{
		Name:      f.Name,
		Key:       normalizeKey(f.Name),
		Type:      typ,
		ArrayLen:  arrayLen,
		Extension: f.Extension,
	}
	if f.Enum != "" {
		field.Enum = normalizeKey(f.Enum)
	}
	return field, nil
}

// compileMessage builds the full codec for one <message> element.
func compileMessage(m *messageXML, tables *enumTables, srcName string, logger *log.Helper) (*Message, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("%w: message without a name in %s",
			ErrNullIdentifier, srcName)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(m.ID), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q of message %s in %s",
			ErrNotAnInteger, m.ID, m.Name, srcName)
	}

	msg := &Message{
		ID:     uint32(id),
		Name:   m.Name,
		Key:    normalizeKey(m.Name),
		tables: tables,
	}

	for _, fx := range m.Fields {
		field, err := compileField(fx, m.Name)
		if err != nil {
			return nil, err
		}
		if field.Extension {
			msg.Extensions = append(msg.Extensions, field)
		} else {
			msg.Fields = append(msg.Fields, field)
		}
	}

	// Wire order: size-descending classes, declaration order within a class.
	sort.SliceStable(msg.Fields, func(i, j int) bool {
		return typeInfos[msg.Fields[i].Type].size > typeInfos[msg.Fields[j].Type].size
	})

	offset := 0
	for _, f := range msg.Fields {
		msg.codecs = append(msg.codecs, fieldCodec{
			field:  f,
			info:   typeInfos[f.Type],
			offset: offset,
		})
		offset += f.size()
	}
	msg.PayloadSize = offset

	for _, f := range msg.Extensions {
		msg.extCodecs = append(msg.extCodecs, fieldCodec{
			field:  f,
			info:   typeInfos[f.Type],
			offset: offset,
		})
		offset += f.size()
	}
	msg.ExtendedPayloadSize = offset

	msg.CRCExtra = crcExtra(msg)
	msg.defaults = defaultRecord(msg)

	if msg.ExtendedPayloadSize > MaxMessageSize && logger != nil {
		logger.Warnf("message %s: extended payload of %d bytes exceeds the %d byte frame limit",
			m.Name, msg.ExtendedPayloadSize, MaxMessageSize)
	}

	return msg, nil
}

// crcExtra derives the message seed byte: the X.25 checksum of the message
// name and the sorted regular-field schema, folded to a single byte. For
// array fields the length joins the seed as one raw byte. Extension fields
// are left out so extended dialects stay wire-compatible.
func crcExtra(msg *Message) byte {
	crc := crc16Accumulate(0xffff, []byte(msg.Name+" "))
	for _, f := range msg.Fields {
		crc = crc16Accumulate(crc, []byte(crcTypeName(f.Type)+" "))
		crc = crc16Accumulate(crc, []byte(f.Name+" "))
		if f.ArrayLen > 0 {
			crc = crc16Accumulate(crc, []byte{byte(f.ArrayLen)})
		}
	}
	return byte(crc&0xff) ^ byte(crc>>8)
}

// defaultRecord builds the zero template for a message: scalars get the
// numeric zero of their type, arrays a zero-filled slice of the declared
// length.
func defaultRecord(msg *Message) map[string]interface{} {
	defaults := make(map[string]interface{}, len(msg.Fields)+len(msg.Extensions))
	fill := func(fields []*Field) {
		for _, f := range fields {
			info := typeInfos[f.Type]
			if f.ArrayLen > 0 {
				defaults[f.Key] = info.slice(f.ArrayLen)
			} else {
				defaults[f.Key] = info.zero
			}
		}
	}
	fill(msg.Fields)
	fill(msg.Extensions)
	return defaults
}

// NewRecord returns a fresh mutable copy of the message default template.
func (m *Message) NewRecord() map[string]interface{} {
	rec := make(map[string]interface{}, len(m.defaults))
	for k, v := range m.defaults {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
			reflect.Copy(cp, rv)
			v = cp.Interface()
		}
		rec[k] = v
	}
	return rec
}

// Encode renders a message record into a payload of ExtendedPayloadSize
// bytes, extension fields included. Fields absent from the record encode as
// zero. Symbolic enum values resolve through the dialect enum tables. Array
// values shorter than the declared length are zero-padded; longer ones fail
// with ErrArrayOverflow.
func (m *Message) Encode(rec map[string]interface{}) ([]byte, error) {
	payload := make([]byte, m.ExtendedPayloadSize)
	for i := range m.codecs {
		if err := m.codecs[i].encode(payload, rec, m.tables); err != nil {
			return nil, fmt.Errorf("message %s: %w", m.Name, err)
		}
	}
	for i := range m.extCodecs {
		if err := m.extCodecs[i].encode(payload, rec, m.tables); err != nil {
			return nil, fmt.Errorf("message %s: %w", m.Name, err)
		}
	}
	return payload, nil
}

// Decode reads a payload back into a message record. Payloads shorter than
// the extended size are zero-extended first, so trailing-zero truncated
// frames decode; payloads shorter than the regular payload size are an
// error. Enum-bound values decode to their entry key when the group knows
// them and pass through numerically otherwise. Char arrays decode to a
// string with trailing NULs and surrounding whitespace trimmed.
func (m *Message) Decode(payload []byte) (map[string]interface{}, error) {
	if len(payload) < m.PayloadSize {
		return nil, fmt.Errorf("message %s: %w: got %d bytes, need %d",
			m.Name, ErrShortPayload, len(payload), m.PayloadSize)
	}
	if len(payload) < m.ExtendedPayloadSize {
		extended := make([]byte, m.ExtendedPayloadSize)
		copy(extended, payload)
		payload = extended
	}

	rec := make(map[string]interface{}, len(m.codecs)+len(m.extCodecs))
	for i := range m.codecs {
		m.codecs[i].decode(payload, rec, m.tables)
	}
	for i := range m.extCodecs {
		m.extCodecs[i].decode(payload, rec, m.tables)
	}
	return rec, nil
}

func (c *fieldCodec) encode(payload []byte, rec map[string]interface{}, tables *enumTables) error {
	v, ok := rec[c.field.Key]
	if !ok || v == nil {
		// The payload is already zeroed, which is the default of every type.
		return nil
	}

	if c.field.ArrayLen > 0 {
		return c.encodeArray(payload, v, tables)
	}

	v, err := c.resolveEnum(v, tables)
	if err != nil {
		return err
	}
	if err := c.info.write(payload[c.offset:], v); err != nil {
		return fmt.Errorf("field %s: %w", c.field.Name, err)
	}
	return nil
}

func (c *fieldCodec) encodeArray(payload []byte, v interface{}, tables *enumTables) error {
	// Char arrays accept strings and byte slices alike.
	if c.field.Type == "char" {
		var b []byte
		switch s := v.(type) {
		case string:
			b = []byte(s)
		case []byte:
			b = s
		default:
			return fmt.Errorf("field %s: %w", c.field.Name, errValue("char array", v))
		}
		if len(b) > c.field.ArrayLen {
			return fmt.Errorf("field %s: %w: %d bytes into char[%d]",
				c.field.Name, ErrArrayOverflow, len(b), c.field.ArrayLen)
		}
		copy(payload[c.offset:c.offset+c.field.ArrayLen], b)
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("field %s: %w", c.field.Name, errValue(c.field.Type+" array", v))
	}
	if rv.Len() > c.field.ArrayLen {
		return fmt.Errorf("field %s: %w: %d elements into %s[%d]",
			c.field.Name, ErrArrayOverflow, rv.Len(), c.field.Type, c.field.ArrayLen)
	}

	for i := 0; i < rv.Len(); i++ {
		elem, err := c.resolveEnum(rv.Index(i).Interface(), tables)
		if err != nil {
			return err
		}
		if err := c.info.write(payload[c.offset+i*c.info.size:], elem); err != nil {
			return fmt.Errorf("field %s[%d]: %w", c.field.Name, i, err)
		}
	}
	// Remaining slots keep their zero fill.
	return nil
}

// resolveEnum maps a symbolic entry name onto its numeric value for
// enum-bound fields. Numeric values pass through untouched.
func (c *fieldCodec) resolveEnum(v interface{}, tables *enumTables) (interface{}, error) {
	s, ok := v.(string)
	if !ok || c.field.Enum == "" {
		return v, nil
	}
	value, ok := tables.values[normalizeKey(s)]
	if !ok {
		return nil, fmt.Errorf("field %s: %w: %q", c.field.Name, ErrUnknownEnumEntry, s)
	}
	return value, nil
}

func (c *fieldCodec) decode(payload []byte, rec map[string]interface{}, tables *enumTables) {
	if c.field.ArrayLen == 0 {
		rec[c.field.Key] = c.mapEnum(c.info.read(payload[c.offset:]), tables)
		return
	}

	if c.field.Type == "char" {
		raw := payload[c.offset : c.offset+c.field.ArrayLen]
		s := strings.TrimRight(string(raw), "\x00")
		rec[c.field.Key] = strings.TrimSpace(s)
		return
	}

	if c.field.Enum != "" {
		out := make([]interface{}, c.field.ArrayLen)
		for i := range out {
			out[i] = c.mapEnum(c.info.read(payload[c.offset+i*c.info.size:]), tables)
		}
		rec[c.field.Key] = out
		return
	}

	out := reflect.ValueOf(c.info.slice(c.field.ArrayLen))
	for i := 0; i < c.field.ArrayLen; i++ {
		out.Index(i).Set(reflect.ValueOf(c.info.read(payload[c.offset+i*c.info.size:])))
	}
	rec[c.field.Key] = out.Interface()
}

// mapEnum renders a decoded numeric as its entry key when the bound group
// knows the value; unknown values pass through unchanged.
func (c *fieldCodec) mapEnum(v interface{}, tables *enumTables) interface{} {
	if c.field.Enum == "" {
		return v
	}
	group, ok := tables.groups[c.field.Enum]
	if !ok {
		return v
	}
	iv, ok := asInt64(v)
	if !ok {
		return v
	}
	if name, ok := group[iv]; ok {
		return name
	}
	return v
}
