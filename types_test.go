// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"reflect"
	"testing"
)

func TestTypeSizes(t *testing.T) {

	tests := []struct {
		in  string
		out int
	}{
		{"char", 1},
		{"uint8_t", 1},
		{"int8_t", 1},
		{"uint8_t_mavlink_version", 1},
		{"uint16_t", 2},
		{"int16_t", 2},
		{"uint32_t", 4},
		{"int32_t", 4},
		{"float", 4},
		{"uint64_t", 8},
		{"int64_t", 8},
		{"double", 8},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			info, ok := typeInfos[tt.in]
			if !ok {
				t.Fatalf("type %s missing from the registry", tt.in)
			}
			if info.size != tt.out {
				t.Errorf("size assertion failed, got %d, want %d", info.size, tt.out)
			}
		})
	}
}

func TestTypeRoundTrip(t *testing.T) {

	tests := []struct {
		typ string
		in  interface{}
		out interface{}
	}{
		{"uint8_t", uint8(0xab), uint8(0xab)},
		{"int8_t", int8(-5), int8(-5)},
		{"uint16_t", uint16(0xbeef), uint16(0xbeef)},
		{"int16_t", int16(-1234), int16(-1234)},
		{"uint32_t", uint32(0xdeadbeef), uint32(0xdeadbeef)},
		{"int32_t", int32(-123456), int32(-123456)},
		{"uint64_t", uint64(0xdeadbeefcafe), uint64(0xdeadbeefcafe)},
		{"int64_t", int64(-1234567890123), int64(-1234567890123)},
		{"float", float32(3.5), float32(3.5)},
		{"double", float64(-2.25), float64(-2.25)},
		// Writers coerce any integer kind into the wire type.
		{"uint16_t", int(513), uint16(513)},
		{"float", int(4), float32(4)},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			info := typeInfos[tt.typ]
			b := make([]byte, info.size)
			if err := info.write(b, tt.in); err != nil {
				t.Fatalf("write failed, reason: %v", err)
			}
			got := info.read(b)
			if !reflect.DeepEqual(got, tt.out) {
				t.Errorf("round trip assertion failed, got %v (%T), want %v (%T)",
					got, got, tt.out, tt.out)
			}
		})
	}
}

func TestTypeWriteRejectsBadValue(t *testing.T) {
	info := typeInfos["uint32_t"]
	b := make([]byte, info.size)
	if err := info.write(b, "not a number"); err == nil {
		t.Error("writing a string into uint32_t should fail")
	}
}
