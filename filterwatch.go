// filterwatch.go: Hot reload of the level filter from a config file
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"fmt"

	"github.com/agilira/argus"
)

// WatchFilterFile watches a JSON or YAML config file and applies level
// filter changes as the file is edited, without restarting the process.
//
// Recognized keys:
//
//	level: "info"                  global filter
//	targets: {engine: "debug"}     per-target overrides
//
// Returns a stop function that ends the watch. Unparseable levels are
// reported through the error callback and skipped.
func (l *Logger) WatchFilterFile(path string) (stop func() error, err error) {
	watcher, err := argus.UniversalConfigWatcher(path, func(config map[string]interface{}) {
		if raw, ok := config["level"].(string); ok {
			level, parseErr := ParseLevelFilter(raw)
			if parseErr != nil {
				l.reportError("filter_watch", parseErr)
			} else {
				l.SetMaxLevel(level)
			}
		}

		if raw, ok := config["targets"].(map[string]interface{}); ok {
			targets := make(map[string]LevelFilter, len(raw))
			for target, v := range raw {
				s, ok := v.(string)
				if !ok {
					l.reportError("filter_watch", fmt.Errorf("target %q: level must be a string", target))
					continue
				}
				level, parseErr := ParseLevelFilter(s)
				if parseErr != nil {
					l.reportError("filter_watch", parseErr)
					continue
				}
				targets[target] = level
			}
			l.SetTargetFilters(targets)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch filter config: %w", err)
	}

	if err := watcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start filter watcher: %w", err)
	}

	return watcher.Stop, nil
}
