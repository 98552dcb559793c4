// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"testing"
)

func TestCrc16(t *testing.T) {

	tests := []struct {
		in  string
		out uint16
	}{
		{"PING ", 0x963f},
		{"HEARTBEAT uint8_t type ", 0x3e63},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := crc16([]byte(tt.in))
			if got != tt.out {
				t.Errorf("crc16(%q) assertion failed, got 0x%04x, want 0x%04x",
					tt.in, got, tt.out)
			}
		})
	}
}

func TestCrc16Accumulate(t *testing.T) {
	// Accumulating in chunks must equal checksumming the concatenation.
	whole := crc16([]byte("HEARTBEAT uint8_t type "))
	crc := crc16Accumulate(0xffff, []byte("HEARTBEAT "))
	crc = crc16Accumulate(crc, []byte("uint8_t "))
	crc = crc16Accumulate(crc, []byte("type "))
	if crc != whole {
		t.Errorf("chunked accumulate assertion failed, got 0x%04x, want 0x%04x",
			crc, whole)
	}
}
