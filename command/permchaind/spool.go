// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// suffixes of spooled transaction files
const (
	spoolSuffix  = ".txs"
	doneSuffix   = ".done"
	failedSuffix = ".failed"
)

// a directory watched for new transaction files
//
// writers must create the file elsewhere and rename it into the
// directory so that only complete files are seen
type spool struct {
	log       *logger.L
	directory string
	watcher   *fsnotify.Watcher
}

func newSpool(directory string, log *logger.L) (*spool, error) {
	directory, err := filepath.Abs(filepath.Clean(directory))
	if nil != err {
		return nil, err
	}
	if _, err := os.Stat(directory); nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	if err := watcher.Add(directory); nil != err {
		watcher.Close()
		return nil, err
	}

	return &spool{
		log:       log,
		directory: directory,
		watcher:   watcher,
	}, nil
}

// replay files already waiting, then each new one until shutdown
func (s *spool) run(r *replayer, shutdown <-chan os.Signal) {
	defer s.watcher.Close()

	waiting, err := filepath.Glob(filepath.Join(s.directory, "*"+spoolSuffix))
	if nil != err {
		s.log.Errorf("spool: %q  glob error: %s", s.directory, err)
	}
	for _, fileName := range waiting {
		s.process(r, fileName)
	}

loop:
	for {
		select {
		case sig := <-shutdown:
			s.log.Infof("received signal: %v", sig)
			break loop

		case event, ok := <-s.watcher.Events:
			if !ok {
				break loop
			}
			s.log.Debugf("file event: %v", event)
			if isSpooled(event) {
				s.process(r, event.Name)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				break loop
			}
			s.log.Errorf("spool: %q  watch error: %s", s.directory, err)
		}
	}
}

// replay one file and mark it with the outcome
func (s *spool) process(r *replayer, fileName string) {
	s.log.Infof("replay: %q", fileName)

	suffix := doneSuffix
	if err := r.replayFile(fileName); nil != err {
		s.log.Errorf("replay: %q  error: %s", fileName, err)
		suffix = failedSuffix
	}
	if err := os.Rename(fileName, fileName+suffix); nil != err {
		s.log.Errorf("rename: %q  error: %s", fileName, err)
	}
}

func isSpooled(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, spoolSuffix) {
		return false
	}
	return event.Op&fsnotify.Create == fsnotify.Create
}
