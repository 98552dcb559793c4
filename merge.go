// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ConflictKind names the namespace a merge conflict was found in.
type ConflictKind string

const (
	// ConflictEnum marks a clash between enum entry names.
	ConflictEnum ConflictKind = "enum"

	// ConflictMessageID marks a clash between message ids.
	ConflictMessageID ConflictKind = "message-id"

	// ConflictMessageName marks a clash between message names.
	ConflictMessageName ConflictKind = "message-name"
)

// MergeConflictError reports the keys a dialect shares with the accumulated
// namespace it is being merged into.
type MergeConflictError struct {
	Kind   ConflictKind
	Items  []string
	Source string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("dialect merge conflict: %s %s already defined, merging %s",
		e.Kind, strings.Join(e.Items, ", "), e.Source)
}

// Is lets errors.Is match any merge conflict against ErrMergeConflict.
func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// merge folds src into dst. The three namespaces are checked first; any
// overlap fails the whole merge unless overwrite was requested, in which
// case src wins on the conflicting keys. On success src's entries join dst
// and src's messages are rebound to dst's enum tables, so enums defined by
// an included file resolve for every message of the union.
func merge(dst, src *Dialect, overwrite bool) error {
	if !overwrite {
		if err := findConflicts(dst, src); err != nil {
			return err
		}
	}

	for k, v := range src.tables.values {
		dst.tables.values[k] = v
	}
	for k, g := range src.tables.groups {
		dst.tables.groups[k] = g
	}

	for _, msg := range src.Messages {
		if old, ok := dst.MessagesByID[msg.ID]; ok && old.Key != msg.Key {
			// Overwriting by id must not leave a stale name entry behind;
			// the next check covers the reverse case.
			delete(dst.Messages, old.Key)
		}
		if old, ok := dst.Messages[msg.Key]; ok && old.ID != msg.ID {
			delete(dst.MessagesByID, old.ID)
		}
		msg.tables = dst.tables
		dst.Messages[msg.Key] = msg
		dst.MessagesByID[msg.ID] = msg
	}

	if src.Descriptions != nil {
		if dst.Descriptions == nil {
			dst.Descriptions = newDescriptions()
		}
		for k, v := range src.Descriptions.Enums {
			dst.Descriptions.Enums[k] = v
		}
		for k, v := range src.Descriptions.Entries {
			dst.Descriptions.Entries[k] = v
		}
		for k, v := range src.Descriptions.Messages {
			dst.Descriptions.Messages[k] = v
		}
	}

	if src.Version != "" {
		dst.Version = src.Version
	}
	if src.Number != 0 {
		dst.Number = src.Number
	}
	if dst.Source == "" {
		dst.Source = src.Source
	} else {
		dst.Source += ", " + src.Source
	}
	return nil
}

// findConflicts reports the first non-empty conflict set between dst and
// src, checking enum entries, then message ids, then message names.
func findConflicts(dst, src *Dialect) error {
	var enums []string
	for k := range src.tables.values {
		if _, ok := dst.tables.values[k]; ok {
			enums = append(enums, k)
		}
	}
	if len(enums) > 0 {
		sort.Strings(enums)
		return &MergeConflictError{Kind: ConflictEnum, Items: enums, Source: src.Source}
	}

	var ids []string
	for _, msg := range src.Messages {
		if _, ok := dst.MessagesByID[msg.ID]; ok {
			ids = append(ids, strconv.FormatUint(uint64(msg.ID), 10))
		}
	}
	if len(ids) > 0 {
		sort.Strings(ids)
		return &MergeConflictError{Kind: ConflictMessageID, Items: ids, Source: src.Source}
	}

	var names []string
	for k := range src.Messages {
		if _, ok := dst.Messages[k]; ok {
			names = append(names, k)
		}
	}
	if len(names) > 0 {
		sort.Strings(names)
		return &MergeConflictError{Kind: ConflictMessageName, Items: names, Source: src.Source}
	}

	return nil
}
