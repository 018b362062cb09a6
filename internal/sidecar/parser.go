package sidecar

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"camtrace/internal/camera"
	"camtrace/internal/config"
)

// maxDescriptorBytes bounds how much of a descriptor is read. Camera
// descriptors are a few kilobytes; anything larger is not a sidecar.
const maxDescriptorBytes = 8 << 20

// ErrDescriptorTooLarge is reported for files over maxDescriptorBytes.
var ErrDescriptorTooLarge = errors.New("descriptor exceeds size limit")

// Result is the outcome of parsing one descriptor. Record is non-nil only
// when the document matched a schema and carried a non-blank serial. Err is
// diagnostic and set for the unparsable and unreadable kinds.
type Result struct {
	Kind   Kind
	Record *camera.IdentityRecord
	Err    error
}

// HasIdentity reports whether the descriptor produced an identity record.
func (r Result) HasIdentity() bool {
	return r.Record != nil
}

// Uninformative reports whether a known schema parsed cleanly but yielded
// no identity.
func (r Result) Uninformative() bool {
	return r.Kind.Known() && r.Record == nil && r.Err == nil
}

// Parser extracts identity records from descriptors. Referenced media paths
// are kept only when their extension is a configured video extension.
type Parser struct {
	isVideo func(ext string) bool
}

// New builds a parser using cfg's video extension set. A nil cfg uses the
// repository defaults.
func New(cfg *config.Config) *Parser {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return &Parser{isVideo: cfg.IsVideoExtension}
}

// Parse parses content with the default configuration.
func Parse(content []byte, sourcePath string) Result {
	return New(nil).Parse(content, sourcePath)
}

// Parse classifies content by its root element and runs the matching
// extraction rule. It never panics and never returns an error to the caller;
// failures are folded into the Result.
func (p *Parser) Parse(content []byte, sourcePath string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Kind: KindUnparsable, Err: fmt.Errorf("parse descriptor: %v", r)}
		}
	}()

	root, err := rootElement(content)
	if err != nil {
		return Result{Kind: KindUnparsable, Err: err}
	}
	variant, ok := schemas[root]
	if !ok {
		return Result{Kind: KindUnknown}
	}
	record, err := variant.extract(p, content, sourcePath)
	if err != nil {
		return Result{Kind: KindUnparsable, Err: fmt.Errorf("decode %s: %w", root, err)}
	}
	return Result{Kind: variant.kind, Record: record}
}

// ParseFile reads and parses the descriptor at path.
func (p *Parser) ParseFile(path string) Result {
	file, err := os.Open(path)
	if err != nil {
		return Result{Kind: KindUnreadable, Err: fmt.Errorf("open descriptor: %w", err)}
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxDescriptorBytes+1))
	if err != nil {
		return Result{Kind: KindUnreadable, Err: fmt.Errorf("read descriptor: %w", err)}
	}
	if len(content) > maxDescriptorBytes {
		return Result{Kind: KindUnparsable, Err: ErrDescriptorTooLarge}
	}
	return p.Parse(content, path)
}

// rootElement returns the local name of the first start element. The whole
// document is consumed so trailing garbage is reported as unparsable.
func rootElement(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.Strict = true
	var root string
	depth := 0
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read xml: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if root == "" {
				root = t.Name.Local
			} else if depth == 0 {
				return "", errors.New("read xml: multiple root elements")
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if root == "" {
		return "", errors.New("read xml: no root element")
	}
	return root, nil
}
