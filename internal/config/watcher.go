// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors emit per save.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the config whenever the file at path changes and passes
// the result to onChange. Invalid intermediate states (half-saved files)
// are skipped silently; the last valid config stays in effect. The
// returned stop function ends watching.
//
// The parent directory is watched, not the file: editors that rename a
// temp file over the target (as Save does) would otherwise detach the
// watch.
func Watch(path string, onChange func(*Config)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		var timer *time.Timer
		target := filepath.Clean(path)
		for {
			select {
			case <-done:
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					if cfg, err := Load(path); err == nil {
						onChange(cfg)
					}
				})
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watch errors are non-fatal; the running config stays.
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
