// Package report renders a pipeline.Result for people and other tools: a
// console report, a JSON export, PNG plots and a static HTML chart page.
//
// Writers never modify the Result. File outputs go through
// fsutil.FileSystem so tests can render into memory.
package report
