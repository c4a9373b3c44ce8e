// Package watcher reports changes to a project tree using fsnotify.
//
// Only directories the gitignore decider keeps are watched, and events for
// ignored paths are dropped. Events are debounced so editors and git
// checkouts produce one batch instead of a burst. A change to any .gitignore
// purges the decider cache and is reported as OpGitignoreChange so callers
// can rescan.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, "/path/to/project") }()
//
//	for batch := range w.Events() {
//	    for _, ev := range batch {
//	        fmt.Println(ev.Operation, ev.Path)
//	    }
//	}
package watcher
