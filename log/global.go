// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package log

import "sync"

var global = &loggerAppliance{}

type loggerAppliance struct {
	lock sync.Mutex
	*Helper
}

func init() {
	global.SetLogger(DefaultLogger)
}

func (a *loggerAppliance) SetLogger(in Logger) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.Helper = NewHelper(in)
}

// SetLogger replaces the package-level logger.
func SetLogger(logger Logger) {
	global.SetLogger(logger)
}

// Debug logs a message at debug level with the package-level logger.
func Debug(a ...interface{}) {
	global.Debug(a...)
}

// Debugf logs a formatted message at debug level with the package-level logger.
func Debugf(format string, a ...interface{}) {
	global.Debugf(format, a...)
}

// Info logs a message at info level with the package-level logger.
func Info(a ...interface{}) {
	global.Info(a...)
}

// Infof logs a formatted message at info level with the package-level logger.
func Infof(format string, a ...interface{}) {
	global.Infof(format, a...)
}

// Warn logs a message at warn level with the package-level logger.
func Warn(a ...interface{}) {
	global.Warn(a...)
}

// Warnf logs a formatted message at warn level with the package-level logger.
func Warnf(format string, a ...interface{}) {
	global.Warnf(format, a...)
}

// Error logs a message at error level with the package-level logger.
func Error(a ...interface{}) {
	global.Error(a...)
}

// Errorf logs a formatted message at error level with the package-level logger.
func Errorf(format string, a ...interface{}) {
	global.Errorf(format, a...)
}
