// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// enumTables holds the two enum views of a dialect: entry name to numeric
// value, used when encoding symbolic values, and group name to value-to-entry
// mapping, used when decoding raw integers back into symbols. Each compiled
// message holds a read-only reference to the tables of the dialect it belongs
// to and passes it to its field codecs; the merger rebinds that reference to
// the merged tables so cross-include enum references resolve.
type enumTables struct {
	values map[string]int64
	groups map[string]map[int64]string
}

func newEnumTables() *enumTables {
	return &enumTables{
		values: make(map[string]int64),
		groups: make(map[string]map[int64]string),
	}
}

// compileEnums builds the enum tables for a single definition. Entries
// without an explicit value continue from the previous entry of the same
// enum; the counter resets at every <enum> so the first implicit entry of
// each group gets 0.
func compileEnums(def *definitionXML, srcName string) (*enumTables, error) {
	tables := newEnumTables()

	for _, enum := range def.Enums {
		if enum.Name == "" {
			return nil, fmt.Errorf("%w: enum without a name in %s",
				ErrNullIdentifier, srcName)
		}

		group := make(map[int64]string, len(enum.Entries))
		last := int64(-1)
		for _, entry := range enum.Entries {
			if entry.Name == "" {
				return nil, fmt.Errorf("%w: entry without a name in enum %s of %s",
					ErrNullIdentifier, enum.Name, srcName)
			}

			if text := strings.TrimSpace(entry.Value); text != "" {
				v, err := strconv.ParseInt(text, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: entry %s of enum %s in %s has value %q",
						ErrNotAnInteger, entry.Name, enum.Name, srcName, entry.Value)
				}
				last = v
			} else {
				last++
			}

			key := normalizeKey(entry.Name)
			tables.values[key] = last
			group[last] = key
		}

		tables.groups[normalizeKey(enum.Name)] = group
	}

	return tables, nil
}
