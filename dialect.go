// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mavflow/dialect/log"
)

// Dialect is the compiled codec table of one or more MAVLink definition
// files. It is immutable once Compile returns and safe to share across
// goroutines.
type Dialect struct {
	// Source names the definition files that produced this dialect.
	Source string `json:"source"`

	// Version is the protocol version carried by the definitions, when any.
	Version string `json:"version,omitempty"`

	// Number is the dialect number carried by the definitions, when any.
	Number int `json:"dialect,omitempty"`

	// EnumValues maps normalized entry names to their numeric values.
	EnumValues map[string]int64 `json:"enum_values,omitempty"`

	// EnumGroups maps normalized group names to value-to-entry tables.
	EnumGroups map[string]map[int64]string `json:"enum_groups,omitempty"`

	// Messages indexes the compiled messages by normalized name.
	Messages map[string]*Message `json:"messages,omitempty"`

	// MessagesByID indexes the compiled messages by id.
	MessagesByID map[uint32]*Message `json:"messages_by_id,omitempty"`

	// Descriptions holds the free-text documentation tables, nil unless
	// requested through Options.
	Descriptions *Descriptions `json:"descriptions,omitempty"`

	tables *enumTables
}

// Descriptions carries the documentation text of a dialect, partitioned by
// kind so an enum entry and a message sharing a name never collide.
type Descriptions struct {
	Enums    map[string]string `json:"enums,omitempty"`
	Entries  map[string]string `json:"entries,omitempty"`
	Messages map[string]string `json:"messages,omitempty"`
}

func newDescriptions() *Descriptions {
	return &Descriptions{
		Enums:    make(map[string]string),
		Entries:  make(map[string]string),
		Messages: make(map[string]string),
	}
}

func newDialect(source string) *Dialect {
	tables := newEnumTables()
	return &Dialect{
		Source:       source,
		EnumValues:   tables.values,
		EnumGroups:   tables.groups,
		Messages:     make(map[string]*Message),
		MessagesByID: make(map[uint32]*Message),
		tables:       tables,
	}
}

// GetMessageByID returns the compiled message with the given id.
func (d *Dialect) GetMessageByID(id uint32) (*Message, bool) {
	msg, ok := d.MessagesByID[id]
	return msg, ok
}

// GetMessageByName returns the compiled message with the given name. The
// name is normalized before lookup, so HEARTBEAT and heartbeat both resolve.
func (d *Dialect) GetMessageByName(name string) (*Message, bool) {
	msg, ok := d.Messages[normalizeKey(name)]
	return msg, ok
}

// Options for compiling.
type Options struct {

	// Collect the free-text description elements into the descriptor, by
	// default (false).
	Descriptions bool

	// Let later definitions silently replace conflicting enum entries and
	// messages instead of failing the merge, by default (false).
	Overwrite bool

	// A custom logger.
	Logger log.Logger
}

// Compiler turns a set of MAVLink definition sources into a merged Dialect.
type Compiler struct {
	// Dialect holds the compiled descriptor after Compile succeeds.
	Dialect *Dialect

	sources []*Source
	opts    *Options
	logger  *log.Helper
}

// New instantiates a compiler with options given a list of definition file
// paths. The files are memory mapped instead of using read/write.
func New(paths []string, opts *Options) (*Compiler, error) {
	var sources []*Source
	for _, p := range paths {
		src, err := openSource(p)
		if err != nil {
			for _, s := range sources {
				s.Close()
			}
			return nil, err
		}
		sources = append(sources, src)
	}
	return NewBytes(sources, opts), nil
}

// NewBytes instantiates a compiler with options given in-memory sources.
func NewBytes(sources []*Source, opts *Options) *Compiler {
	c := &Compiler{sources: sources}
	if opts != nil {
		c.opts = opts
	} else {
		c.opts = &Options{}
	}

	if c.opts.Logger == nil {
		logger := log.NewStdLogger(os.Stdout)
		c.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		c.logger = log.NewHelper(c.opts.Logger)
	}
	return c
}

// Close releases the file mappings backing file-based sources.
func (c *Compiler) Close() error {
	var first error
	for _, s := range c.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Compile runs the pipeline: parse every source, verify the include closure,
// compile each definition independently and fold the results into a single
// dialect. Any failure is fatal; no partial descriptor is produced.
func (c *Compiler) Compile() error {
	for _, src := range c.sources {
		if err := src.parse(); err != nil {
			return err
		}
	}

	if err := checkIncludes(c.sources); err != nil {
		return err
	}

	merged := newDialect("")
	for _, src := range c.sources {
		d, err := c.compileSource(src)
		if err != nil {
			return err
		}
		if merged.Version != "" && d.Version != "" && d.Version != merged.Version {
			c.logger.Warnf("%s: version %s replaces version %s",
				d.Source, d.Version, merged.Version)
		}
		if err := merge(merged, d, c.opts.Overwrite); err != nil {
			return err
		}
	}

	c.Dialect = merged
	return nil
}

// compileSource compiles a single parsed definition into its own dialect.
func (c *Compiler) compileSource(src *Source) (*Dialect, error) {
	name, err := src.fileName()
	if err != nil {
		return nil, err
	}

	tables, err := compileEnums(src.def, name)
	if err != nil {
		return nil, err
	}

	d := newDialect(name)
	d.tables = tables
	d.EnumValues = tables.values
	d.EnumGroups = tables.groups
	d.Version = strings.TrimSpace(src.def.Version)

	if text := strings.TrimSpace(src.def.Dialect); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil {
			c.logger.Warnf("%s: ignoring non-integer dialect number %q", name, text)
		} else {
			d.Number = n
		}
	}

	for _, mx := range src.def.Messages {
		msg, err := compileMessage(mx, tables, name, c.logger)
		if err != nil {
			return nil, err
		}
		if old, ok := d.MessagesByID[msg.ID]; ok {
			return nil, &MergeConflictError{
				Kind:   ConflictMessageID,
				Items:  []string{fmt.Sprintf("%d (%s, %s)", msg.ID, old.Name, msg.Name)},
				Source: name,
			}
		}
		if _, ok := d.Messages[msg.Key]; ok {
			return nil, &MergeConflictError{
				Kind:   ConflictMessageName,
				Items:  []string{msg.Key},
				Source: name,
			}
		}
		d.Messages[msg.Key] = msg
		d.MessagesByID[msg.ID] = msg
	}

	if c.opts.Descriptions {
		d.Descriptions = collectDescriptions(src.def)
	}

	return d, nil
}

// collectDescriptions gathers the free-text documentation of a definition.
// Collection never affects codec correctness.
func collectDescriptions(def *definitionXML) *Descriptions {
	desc := newDescriptions()
	for _, enum := range def.Enums {
		if text := strings.TrimSpace(enum.Description); text != "" {
			desc.Enums[normalizeKey(enum.Name)] = text
		}
		for _, entry := range enum.Entries {
			if text := strings.TrimSpace(entry.Description); text != "" {
				desc.Entries[normalizeKey(entry.Name)] = text
			}
		}
	}
	for _, msg := range def.Messages {
		if text := strings.TrimSpace(msg.Description); text != "" {
			desc.Messages[normalizeKey(msg.Name)] = text
		}
	}
	return desc
}
