// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

func Fuzz(data []byte) int {
	c := NewBytes([]*Source{NewSource("fuzz.xml", data)}, &Options{Descriptions: true})
	if err := c.Compile(); err != nil {
		return 0
	}
	return 1
}
