// Package textutil provides filename sanitization for files camtrace writes
// outside the analyzed tree, such as generated thumbnails.
package textutil
