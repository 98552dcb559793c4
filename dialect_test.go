// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"errors"
	"testing"
)

func TestCompileFiles(t *testing.T) {
	c, err := New([]string{
		getAbsoluteFilePath("testdata/common.xml"),
		getAbsoluteFilePath("testdata/vehicle.xml"),
	}, &Options{Descriptions: true})
	if err != nil {
		t.Fatalf("New failed, reason: %v", err)
	}
	defer c.Close()

	if err := c.Compile(); err != nil {
		t.Fatalf("Compile failed, reason: %v", err)
	}
	d := c.Dialect

	if d.Version != "3" {
		t.Errorf("version assertion failed, got %q, want 3", d.Version)
	}

	heartbeat, ok := d.GetMessageByID(0)
	if !ok {
		t.Fatal("HEARTBEAT not found by id")
	}
	if heartbeat.CRCExtra != 50 {
		t.Errorf("HEARTBEAT crc extra assertion failed, got %d, want 50",
			heartbeat.CRCExtra)
	}

	status, ok := d.GetMessageByName("VEHICLE_STATUS")
	if !ok {
		t.Fatal("VEHICLE_STATUS not found by name")
	}
	if status.PayloadSize != 21 {
		t.Errorf("payload size assertion failed, got %d, want 21", status.PayloadSize)
	}
	if status.ExtendedPayloadSize != 23 {
		t.Errorf("extended size assertion failed, got %d, want 23",
			status.ExtendedPayloadSize)
	}

	// The vehicle message decodes its state field through the enum group
	// that common.xml defines.
	rec := status.NewRecord()
	rec["state"] = "MAV_STATE_ACTIVE"
	rec["callsign"] = "N123AB"
	rec["uptime-ms"] = uint32(5000)
	payload, err := status.Encode(rec)
	if err != nil {
		t.Fatalf("Encode failed, reason: %v", err)
	}
	got, err := status.Decode(payload)
	if err != nil {
		t.Fatalf("Decode failed, reason: %v", err)
	}
	if got["state"] != "mav-state-active" {
		t.Errorf("state decode assertion failed, got %v", got["state"])
	}
	if got["callsign"] != "N123AB" {
		t.Errorf("callsign decode assertion failed, got %v", got["callsign"])
	}
	if got["uptime-ms"] != uint32(5000) {
		t.Errorf("uptime decode assertion failed, got %v", got["uptime-ms"])
	}
}

func TestCompileMissingInclude(t *testing.T) {
	c := NewBytes([]*Source{
		NewSource("A.xml", []byte(`<mavlink><include>common.xml</include></mavlink>`)),
	}, nil)
	err := c.Compile()
	if !errors.Is(err, ErrMissingInclude) {
		t.Errorf("error assertion failed, got %v, want %v", err, ErrMissingInclude)
	}
	if c.Dialect != nil {
		t.Error("no descriptor should be produced on failure")
	}
}

func TestDescriptions(t *testing.T) {
	text := `<mavlink>
		<enums><enum name="MODES">
			<description>Operating modes.</description>
			<entry value="1" name="FOO">
				<description>First mode.</description>
			</entry>
		</enum></enums>
		<messages><message id="6" name="MODES">
			<description>Reports the mode.</description>
			<field type="uint8_t" name="mode" enum="MODES"/>
		</message></messages>
	</mavlink>`

	// Off by default.
	d := compileTestDialect(t, text, nil)
	if d.Descriptions != nil {
		t.Error("descriptions collected without being requested")
	}

	// Partitioned by kind: the enum group and the message share a name
	// without colliding.
	d = compileTestDialect(t, text, &Options{Descriptions: true})
	if d.Descriptions == nil {
		t.Fatal("descriptions missing")
	}
	if d.Descriptions.Enums["modes"] != "Operating modes." {
		t.Errorf("enum description assertion failed, got %q", d.Descriptions.Enums["modes"])
	}
	if d.Descriptions.Entries["foo"] != "First mode." {
		t.Errorf("entry description assertion failed, got %q", d.Descriptions.Entries["foo"])
	}
	if d.Descriptions.Messages["modes"] != "Reports the mode." {
		t.Errorf("message description assertion failed, got %q",
			d.Descriptions.Messages["modes"])
	}
}

func TestCompileFileAttributeIdentity(t *testing.T) {
	// The file attribute satisfies an include even when the caller-supplied
	// name differs.
	c := NewBytes([]*Source{
		NewSource("downloaded-1234.xml", []byte(`<mavlink file="common.xml"/>`)),
		NewSource("vehicle.xml", []byte(`<mavlink><include>common.xml</include></mavlink>`)),
	}, nil)
	if err := c.Compile(); err != nil {
		t.Errorf("Compile failed, reason: %v", err)
	}
}

func TestFuzzCorpusSeeds(t *testing.T) {
	// The fuzz entry point must reject garbage without producing a dialect.
	if Fuzz([]byte("not xml at all")) != 0 {
		t.Error("garbage input should not compile")
	}
	if Fuzz([]byte(`<mavlink><messages><message id="1" name="PING"/></messages></mavlink>`)) != 1 {
		t.Error("valid input should compile")
	}
}
