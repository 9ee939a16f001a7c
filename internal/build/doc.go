// Package build is the build pipeline: reset the output tree, mirror the
// static assets, vendor the Markdown stylesheet, render task pages and write
// the tasks index, optionally followed by link verification.
//
// Every execution path (the build command, watch mode, tests) goes through
// Run, which takes an explicit configuration record and keeps no global
// state. Stages run strictly in order; a fatal stage error aborts the build,
// while warnings (missing task directory, missing vendored stylesheet, broken
// links) are recorded on the BuildReport and the build continues.
package build
