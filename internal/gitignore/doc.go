// Package gitignore decides whether a path is excluded by the .gitignore files
// of its ancestor directories.
//
// Patterns are compiled into a small token sequence rather than a regular
// expression:
//   - "*" matches any run of characters except "/"
//   - "**" matches any run of characters including "/"
//   - "?" matches exactly one character except "/"
//   - everything else is literal
//
// A leading "!" negates a pattern and a leading "/" anchors it to the
// directory containing the .gitignore. Unanchored patterns may match at any
// path-segment boundary. Every pattern that matches a path prefix also matches
// everything below that prefix, so "build/" tested against a directory path
// ignores the directory and its contents.
//
// Files are applied furthest-ancestor first and lines top to bottom; the last
// matching pattern wins, across files as well as within one.
//
// On top of pattern matching the Decider enforces non-negatable built-in
// rules, each switchable through Policy:
//   - any ".git" path segment
//   - hidden entries (basename starting with ".")
//   - "tmp" and "temp" directories
//
// Usage:
//
//	files := gitignore.Load("/path/to/project")
//	d := gitignore.NewDecider(gitignore.DefaultPolicy())
//	if d.IsIgnored("/path/to/project/build", files, true) {
//	    // skip the whole subtree
//	}
package gitignore
