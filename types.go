// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"encoding/binary"
	"math"
)

// typeMavlinkVersion is the pseudo-type carried by the HEARTBEAT
// mavlink_version field. It keeps its identity in the compiled field record
// but contributes to the CRC seed as a plain uint8_t.
const typeMavlinkVersion = "uint8_t_mavlink_version"

// typeInfo describes a MAVLink wire type: its encoded size and its
// little-endian reader and writer over a payload slice.
type typeInfo struct {
	size  int
	zero  interface{}
	write func(b []byte, v interface{}) error
	read  func(b []byte) interface{}
	slice func(n int) interface{}
}

// typeInfos maps MAVLink base-type names, matched verbatim against the XML
// type attribute, to their wire descriptions.
var typeInfos = map[string]*typeInfo{
	"char": {
		size: 1,
		zero: uint8(0),
		write: func(b []byte, v interface{}) error {
			u, ok := asUint64(v)
			if !ok {
				return errValue("char", v)
			}
			b[0] = uint8(u)
			return nil
		},
		read:  func(b []byte) interface{} { return b[0] },
		slice: func(n int) interface{} { return make([]byte, n) },
	},
	"uint8_t": {
		size: 1,
		zero: uint8(0),
		write: func(b []byte, v interface{}) error {
			u, ok := asUint64(v)
			if !ok {
				return errValue("uint8_t", v)
			}
			b[0] = uint8(u)
			return nil
		},
		read:  func(b []byte) interface{} { return b[0] },
		slice: func(n int) interface{} { return make([]uint8, n) },
	},
	"int8_t": {
		size: 1,
		zero: int8(0),
		write: func(b []byte, v interface{}) error {
			i, ok := asInt64(v)
			if !ok {
				return errValue("int8_t", v)
			}
			b[0] = uint8(i)
			return nil
		},
		read:  func(b []byte) interface{} { return int8(b[0]) },
		slice: func(n int) interface{} { return make([]int8, n) },
	},
	"uint16_t": {
		size: 2,
		zero: uint16(0),
		write: func(b []byte, v interface{}) error {
			u, ok := asUint64(v)
			if !ok {
				return errValue("uint16_t", v)
			}
			binary.LittleEndian.PutUint16(b, uint16(u))
			return nil
		},
		read:  func(b []byte) interface{} { return binary.LittleEndian.Uint16(b) },
		slice: func(n int) interface{} { return make([]uint16, n) },
	},
	"int16_t": {
		size: 2,
		zero: int16(0),
		write: func(b []byte, v interface{}) error {
			i, ok := asInt64(v)
			if !ok {
				return errValue("int16_t", v)
			}
			binary.LittleEndian.PutUint16(b, uint16(i))
			return nil
		},
		read:  func(b []byte) interface{} { return int16(binary.LittleEndian.Uint16(b)) },
		slice: func(n int) interface{} { return make([]int16, n) },
	},
	"uint32_t": {
		size: 4,
		zero: uint32(0),
		write: func(b []byte, v interface{}) error {
			u, ok := asUint64(v)
			if !ok {
				return errValue("uint32_t", v)
			}
			binary.LittleEndian.PutUint32(b, uint32(u))
			return nil
		},
		read:  func(b []byte) interface{} { return binary.LittleEndian.Uint32(b) },
		slice: func(n int) interface{} { return make([]uint32, n) },
	},
	"int32_t": {
		size: 4,
		zero: int32(0),
		write: func(b []byte, v interface{}) error {
			i, ok := asInt64(v)
			if !ok {
				return errValue("int32_t", v)
			}
			binary.LittleEndian.PutUint32(b, uint32(i))
			return nil
		},
		read:  func(b []byte) interface{} { return int32(binary.LittleEndian.Uint32(b)) },
		slice: func(n int) interface{} { return make([]int32, n) },
	},
	"uint64_t": {
		size: 8,
		zero: uint64(0),
		write: func(b []byte, v interface{}) error {
			u, ok := asUint64(v)
			if !ok {
				return errValue("uint64_t", v)
			}
			binary.LittleEndian.PutUint64(b, u)
			return nil
		},
		read:  func(b []byte) interface{} { return binary.LittleEndian.Uint64(b) },
		slice: func(n int) interface{} { return make([]uint64, n) },
	},
	"int64_t": {
		size: 8,
		zero: int64(0),
		write: func(b []byte, v interface{}) error {
			i, ok := asInt64(v)
			if !ok {
				return errValue("int64_t", v)
			}
			binary.LittleEndian.PutUint64(b, uint64(i))
			return nil
		},
		read:  func(b []byte) interface{} { return int64(binary.LittleEndian.Uint64(b)) },
		slice: func(n int) interface{} { return make([]int64, n) },
	},
	"float": {
		size: 4,
		zero: float32(0),
		write: func(b []byte, v interface{}) error {
			f, ok := asFloat64(v)
			if !ok {
				return errValue("float", v)
			}
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
			return nil
		},
		read: func(b []byte) interface{} {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		},
		slice: func(n int) interface{} { return make([]float32, n) },
	},
	"double": {
		size: 8,
		zero: float64(0),
		write: func(b []byte, v interface{}) error {
			f, ok := asFloat64(v)
			if !ok {
				return errValue("double", v)
			}
			binary.LittleEndian.PutUint64(b, math.Float64bits(f))
			return nil
		},
		read: func(b []byte) interface{} {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		},
		slice: func(n int) interface{} { return make([]float64, n) },
	},
}

func init() {
	// Identical wire behavior to uint8_t; only the field record and the CRC
	// seed treat it specially.
	typeInfos[typeMavlinkVersion] = typeInfos["uint8_t"]
}

// crcTypeName returns the type name that participates in the CRC seed.
func crcTypeName(typ string) string {
	if typ == typeMavlinkVersion {
		return "uint8_t"
	}
	return typ
}

// asUint64 coerces any integer value into a uint64.
func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int8:
		return uint64(n), true
	case int16:
		return uint64(n), true
	case int32:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case int:
		return uint64(n), true
	}
	return 0, false
}

// asInt64 coerces any integer value into an int64.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// asFloat64 coerces any numeric value into a float64.
func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
