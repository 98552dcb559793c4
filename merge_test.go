// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"errors"
	"reflect"
	"sort"
	"testing"
)

const mergeDialectA = `<mavlink>
	<enums><enum name="ALPHA_MODES">
		<entry value="0" name="ALPHA_OFF"/>
		<entry value="1" name="ALPHA_ON"/>
	</enum></enums>
	<messages><message id="10" name="ALPHA_STATUS">
		<field type="uint8_t" name="mode" enum="ALPHA_MODES"/>
	</message></messages>
</mavlink>`

const mergeDialectB = `<mavlink>
	<enums><enum name="BETA_MODES">
		<entry value="0" name="BETA_OFF"/>
	</enum></enums>
	<messages><message id="20" name="BETA_STATUS">
		<field type="uint16_t" name="flags"/>
	</message></messages>
</mavlink>`

func compileTestSources(t *testing.T, opts *Options, texts ...string) (*Dialect, error) {
	t.Helper()
	var sources []*Source
	for i, text := range texts {
		sources = append(sources, NewSource(string(rune('a'+i))+".xml", []byte(text)))
	}
	c := NewBytes(sources, opts)
	if err := c.Compile(); err != nil {
		return nil, err
	}
	return c.Dialect, nil
}

func messageKeys(d *Dialect) []string {
	var keys []string
	for k := range d.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestMergeDisjointCommutes(t *testing.T) {
	ab, err := compileTestSources(t, nil, mergeDialectA, mergeDialectB)
	if err != nil {
		t.Fatalf("Compile A,B failed, reason: %v", err)
	}
	ba, err := compileTestSources(t, nil, mergeDialectB, mergeDialectA)
	if err != nil {
		t.Fatalf("Compile B,A failed, reason: %v", err)
	}

	if !reflect.DeepEqual(messageKeys(ab), messageKeys(ba)) {
		t.Errorf("message sets differ: %v vs %v", messageKeys(ab), messageKeys(ba))
	}
	if !reflect.DeepEqual(ab.EnumValues, ba.EnumValues) {
		t.Errorf("enum values differ: %v vs %v", ab.EnumValues, ba.EnumValues)
	}
	if !reflect.DeepEqual(ab.EnumGroups, ba.EnumGroups) {
		t.Errorf("enum groups differ: %v vs %v", ab.EnumGroups, ba.EnumGroups)
	}
	for k, msg := range ab.Messages {
		other := ba.Messages[k]
		if msg.ID != other.ID || msg.CRCExtra != other.CRCExtra ||
			msg.PayloadSize != other.PayloadSize {
			t.Errorf("message %s compiled differently across merge orders", k)
		}
	}
}

func TestMergeConflicts(t *testing.T) {

	tests := []struct {
		name string
		a    string
		b    string
		kind ConflictKind
	}{
		{
			"message id conflict",
			`<mavlink><messages><message id="0" name="FIRST"/></messages></mavlink>`,
			`<mavlink><messages><message id="0" name="SECOND"/></messages></mavlink>`,
			ConflictMessageID,
		},
		{
			"message name conflict",
			`<mavlink><messages><message id="1" name="SAME"/></messages></mavlink>`,
			`<mavlink><messages><message id="2" name="SAME"/></messages></mavlink>`,
			ConflictMessageName,
		},
		{
			"enum entry conflict",
			`<mavlink><enums><enum name="A"><entry value="0" name="SHARED_ENTRY"/></enum></enums></mavlink>`,
			`<mavlink><enums><enum name="B"><entry value="5" name="SHARED_ENTRY"/></enum></enums></mavlink>`,
			ConflictEnum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileTestSources(t, nil, tt.a, tt.b)
			if !errors.Is(err, ErrMergeConflict) {
				t.Fatalf("expected a merge conflict, got %v", err)
			}
			var conflict *MergeConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("expected *MergeConflictError, got %T", err)
			}
			if conflict.Kind != tt.kind {
				t.Errorf("conflict kind assertion failed, got %s, want %s",
					conflict.Kind, tt.kind)
			}
			if len(conflict.Items) == 0 {
				t.Error("conflict items are empty")
			}
		})
	}
}

func TestMergeConflictItems(t *testing.T) {
	_, err := compileTestSources(t, nil,
		`<mavlink><messages><message id="0" name="FIRST"/></messages></mavlink>`,
		`<mavlink><messages><message id="0" name="SECOND"/></messages></mavlink>`)

	var conflict *MergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *MergeConflictError, got %v", err)
	}
	if !reflect.DeepEqual(conflict.Items, []string{"0"}) {
		t.Errorf("conflict items assertion failed, got %v, want [0]", conflict.Items)
	}
}

func TestMergeOverwrite(t *testing.T) {
	d, err := compileTestSources(t, &Options{Overwrite: true},
		`<mavlink><messages><message id="0" name="STATUS">
			<field type="uint8_t" name="old"/>
		</message></messages></mavlink>`,
		`<mavlink><messages><message id="0" name="STATUS">
			<field type="uint8_t" name="new"/>
			<field type="uint16_t" name="extra"/>
		</message></messages></mavlink>`)
	if err != nil {
		t.Fatalf("Compile failed, reason: %v", err)
	}

	msg := testMessage(t, d, "STATUS")
	if msg.PayloadSize != 3 {
		t.Errorf("overwrite did not keep the later definition, payload size %d",
			msg.PayloadSize)
	}
	if got := d.MessagesByID[0]; got != msg {
		t.Error("id index does not point at the overwritten message")
	}
}

func TestMergeIntraDialectDuplicate(t *testing.T) {
	_, err := compileTestSources(t, nil,
		`<mavlink><messages>
			<message id="0" name="FIRST"/>
			<message id="0" name="SECOND"/>
		</messages></mavlink>`)
	if !errors.Is(err, ErrMergeConflict) {
		t.Errorf("duplicate id within one dialect should fail, got %v", err)
	}
}

func TestMergeCrossDialectEnum(t *testing.T) {
	// A message of one source bound to an enum group defined by an included
	// source must still decode symbolically after the merge.
	d, err := compileTestSources(t, nil,
		`<mavlink><enums><enum name="SHARED_MODES">
			<entry value="3" name="SHARED_ACTIVE"/>
		</enum></enums></mavlink>`,
		`<mavlink>
			<include>a.xml</include>
			<messages><message id="9" name="USES_SHARED">
				<field type="uint8_t" name="mode" enum="SHARED_MODES"/>
			</message></messages>
		</mavlink>`)
	if err != nil {
		t.Fatalf("Compile failed, reason: %v", err)
	}

	msg := testMessage(t, d, "USES_SHARED")
	rec, err := msg.Decode([]byte{3})
	if err != nil {
		t.Fatalf("Decode failed, reason: %v", err)
	}
	if rec["mode"] != "shared-active" {
		t.Errorf("cross-dialect enum decode assertion failed, got %v", rec["mode"])
	}
}
