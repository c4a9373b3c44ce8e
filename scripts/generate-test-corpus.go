//go:build ignore

// Package main generates a synthetic project tree for benchmarking srcfind.
// Usage: go run scripts/generate-test-corpus.go -files 5000 -output testdata/bench
//
// The tree mixes listed source files with everything a listing must skip:
// gitignored build output, nested .gitignore rules, hidden and tmp
// directories, non-source files and files over the 5 MiB cap.
//
//	srcfind list testdata/bench -c --profile-cpu cpu.prof
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of source files to generate")
	fanout    = flag.Int("fanout", 8, "Subdirectories per directory")
	depth     = flag.Int("depth", 4, "Directory depth")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Extensions drawn for listed files, weighted by repetition.
var sourceExts = []string{
	"go", "go", "go", "ts", "ts", "tsx", "js", "py", "py", "rs",
	"java", "rb", "json", "yaml", "md", "sql", "sh", "css", "graphql",
}

var noiseExts = []string{"txt", "png", "lock", "csv", "bin", "pdf"}

var words = []string{
	"auth", "cache", "config", "core", "data", "event", "handler",
	"index", "model", "parser", "queue", "router", "server", "store",
	"user", "util", "worker",
}

// stats counts what was written so the listing can be checked.
type stats struct {
	listed  int
	ignored int
	noise   int
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	dirs := buildDirs(rng, *outputDir, *depth, *fanout)
	var st stats

	must(writeFile(filepath.Join(*outputDir, ".gitignore"), "node_modules/\ndist/\n*.gen.go\n!keep.gen.go\n"))
	for i := 0; i < *numFiles; i++ {
		dir := dirs[rng.Intn(len(dirs))]
		ext := sourceExts[rng.Intn(len(sourceExts))]
		name := fmt.Sprintf("%s_%d.%s", words[rng.Intn(len(words))], i, ext)
		must(writeFile(filepath.Join(dir, name), body(ext, i)))
		st.listed++

		switch i % 10 {
		case 3:
			must(writeFile(filepath.Join(dir, "node_modules", "pkg", fmt.Sprintf("index_%d.js", i)), "module.exports = {}\n"))
			st.ignored++
		case 5:
			must(writeFile(filepath.Join(dir, fmt.Sprintf("api_%d.gen.go", i)), "package gen\n"))
			st.ignored++
		case 7:
			ext := noiseExts[rng.Intn(len(noiseExts))]
			must(writeFile(filepath.Join(dir, fmt.Sprintf("asset_%d.%s", i, ext)), "noise\n"))
			st.noise++
		}
	}

	// Nested rules, hidden and tmp directories, build output.
	for i, dir := range dirs {
		if i%5 == 1 {
			must(writeFile(filepath.Join(dir, ".gitignore"), "fixtures/\n"))
			must(writeFile(filepath.Join(dir, "fixtures", "data.json"), "{}\n"))
			st.ignored++
		}
	}
	must(writeFile(filepath.Join(*outputDir, "dist", "bundle.js"), strings.Repeat("x", 1024)))
	must(writeFile(filepath.Join(*outputDir, ".cache", "state.json"), "{}\n"))
	must(writeFile(filepath.Join(*outputDir, "tmp", "scratch.ts"), "export {}\n"))
	must(writeFile(filepath.Join(*outputDir, "keep.gen.go"), "package main\n"))
	must(writeFile(filepath.Join(*outputDir, "huge.json"), strings.Repeat(" ", 5*1024*1024+1)))
	st.ignored += 4
	st.listed++

	fmt.Printf("Generated corpus in %s\n", *outputDir)
	fmt.Printf("  directories:  %d\n", len(dirs))
	fmt.Printf("  listed:       %d\n", st.listed)
	fmt.Printf("  ignored:      %d\n", st.ignored)
	fmt.Printf("  non-source:   %d\n", st.noise)
}

// buildDirs returns root and a random tree of directories beneath it.
func buildDirs(rng *rand.Rand, root string, depth, fanout int) []string {
	dirs := []string{root}
	level := []string{root}
	for d := 0; d < depth; d++ {
		var next []string
		for _, parent := range level {
			n := 1 + rng.Intn(fanout)
			for i := 0; i < n; i++ {
				next = append(next, filepath.Join(parent, fmt.Sprintf("%s%d", words[rng.Intn(len(words))], i)))
			}
		}
		dirs = append(dirs, next...)
		level = next
	}
	return dirs
}

func body(ext string, i int) string {
	switch ext {
	case "go":
		return fmt.Sprintf("package p\n\nfunc F%d() int { return %d }\n", i, i)
	case "ts", "tsx", "js":
		return fmt.Sprintf("export const v%d = %d;\n", i, i)
	case "py":
		return fmt.Sprintf("def f%d():\n    return %d\n", i, i)
	case "md":
		return fmt.Sprintf("# Note %d\n", i)
	default:
		return fmt.Sprintf("# %d\n", i)
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
