// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mavflow/dialect"
	"github.com/mavflow/dialect/log"
)

// manifest is the YAML compile configuration accepted by --config.
type manifest struct {
	Definitions  []string `yaml:"definitions"`
	Descriptions bool     `yaml:"descriptions"`
	Overwrite    bool     `yaml:"overwrite"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	m := &manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return m, nil
}

// checkXML rejects inputs that are clearly not definition files before the
// compiler sees them.
func checkXML(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return errors.Wrapf(err, "sniffing %s", path)
	}
	if !mtype.Is("text/xml") && !mtype.Is("application/xml") {
		return errors.Errorf("%s does not look like a MAVLink definition (%s)",
			path, mtype.String())
	}
	return nil
}

func dump(cmd *cobra.Command, args []string) error {
	paths := args
	opts := &dialect.Options{
		Descriptions: descriptions,
		Overwrite:    overwrite,
	}

	if manifestPath != "" {
		m, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}
		paths = append(paths, m.Definitions...)
		opts.Descriptions = opts.Descriptions || m.Descriptions
		opts.Overwrite = opts.Overwrite || m.Overwrite
	}

	if len(paths) == 0 {
		return errors.New("no definition files given")
	}

	for _, p := range paths {
		if err := checkXML(p); err != nil {
			return err
		}
	}

	logger := log.NewStdLogger(os.Stdout)
	if verbose {
		opts.Logger = log.NewFilter(logger, log.FilterLevel(log.LevelDebug))
	} else {
		opts.Logger = log.NewFilter(logger, log.FilterLevel(log.LevelWarn))
	}

	c, err := dialect.New(paths, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Compile(); err != nil {
		return err
	}
	d := c.Dialect

	if jsonOutput {
		buff, _ := json.Marshal(d)
		fmt.Println(prettyPrint(buff))
		return nil
	}

	if wantEnums {
		dumpEnums(d)
	}
	if wantMessages || (!wantEnums && !wantCRC) {
		dumpMessages(d)
	}
	if wantCRC {
		dumpCRC(d)
	}
	return nil
}

func dumpEnums(d *dialect.Dialect) {
	groups := make([]string, 0, len(d.EnumGroups))
	for name := range d.EnumGroups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range groups {
		group := d.EnumGroups[name]
		values := make([]int64, 0, len(group))
		for v := range group {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		for _, v := range values {
			fmt.Fprintf(w, "%s\t%d\t%s\n", name, v, group[v])
		}
	}
	w.Flush()
}

func dumpMessages(d *dialect.Dialect) {
	ids := make([]uint32, 0, len(d.MessagesByID))
	for id := range d.MessagesByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPAYLOAD\tEXTENDED\tCRC")
	for _, id := range ids {
		msg := d.MessagesByID[id]
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
			msg.ID, msg.Name, msg.PayloadSize, msg.ExtendedPayloadSize, msg.CRCExtra)
	}
	w.Flush()
}

func dumpCRC(d *dialect.Dialect) {
	ids := make([]uint32, 0, len(d.MessagesByID))
	for id := range d.MessagesByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		msg := d.MessagesByID[id]
		fmt.Printf("%d: %d\n", msg.ID, msg.CRCExtra)
	}
}

func prettyPrint(buff []byte) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, buff, "", "\t")
	if err != nil {
		log.Errorf("JSON parse error: %v", err)
		return string(buff)
	}

	return prettyJSON.String()
}
