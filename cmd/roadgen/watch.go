package main

import (
	"path/filepath"

	"github.com/2x3systems/roadgen/roadgen"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// watchRecipe runs the recipe once and again each time the recipe file is written,
// until stop is closed.  onBuild (if set) receives the outcome of each run.
func watchRecipe(cfg *roadgen.Config, stop <-chan struct{}, onBuild func(err error)) error {
	if len(*recipePath) == 0 {
		return errors.Wrap(roadgen.ErrBadConfig, "-watch requires -recipe")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// editors often replace the file rather than write it, so watch its dir
	target := filepath.Clean(*recipePath)
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	rebuild := func() {
		err := run(cfg)
		if err != nil {
			klog.Error(err)
		}
		if onBuild != nil {
			onBuild(err)
		}
	}
	rebuild()

	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) == target && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				klog.V(1).Infof("%s changed", target)
				rebuild()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
