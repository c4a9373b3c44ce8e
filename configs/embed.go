// Package configs provides the embedded configuration templates for srcfind.
//
// Templates are embedded at build time so every distribution carries them.
// They are used by:
//   - cmd/srcfind/cmd/config.go → `srcfind config init --project` writes .srcfind.yaml
//
// The template must decode to the same values as config.NewConfig(); the
// package test checks this.
package configs

import _ "embed"

// ProjectConfigTemplate is the commented .srcfind.yaml written at the
// project root. It lists every setting with its default value.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
