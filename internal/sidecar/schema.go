package sidecar

import (
	"encoding/xml"
	"net/url"
	"path/filepath"
	"strings"

	"camtrace/internal/camera"
)

// schema is one variant of the closed descriptor set. identityless schemas
// are decoded for well-formedness only.
type schema struct {
	kind    Kind
	extract func(p *Parser, content []byte, sourcePath string) (*camera.IdentityRecord, error)
}

var schemas = map[string]schema{
	"MediaProfile":    {kind: KindMediaProfile, extract: extractMediaProfile},
	"CueUpInfo":       {kind: KindCueUpInfo, extract: decodeOnly(func() any { return &cueUpInfo{} })},
	"DiscMeta":        {kind: KindDiscMeta, extract: decodeOnly(func() any { return &discMeta{} })},
	"NonRealTimeMeta": {kind: KindNonRealTimeMeta, extract: extractDevice(func() deviceHolder { return &nonRealTimeMeta{} })},
	"ClipMetadata":    {kind: KindClipMetadata, extract: extractDevice(func() deviceHolder { return &clipMetadata{} })},
	"CameraMeta":      {kind: KindCameraMeta, extract: extractDevice(func() deviceHolder { return &cameraMeta{} })},
}

type mediaProfile struct {
	XMLName    xml.Name `xml:"MediaProfile"`
	Properties struct {
		System struct {
			SystemID   string `xml:"systemId,attr"`
			SystemKind string `xml:"systemKind,attr"`
		} `xml:"System"`
	} `xml:"Properties"`
	Contents struct {
		Materials []struct {
			URI   string `xml:"uri,attr"`
			Proxy []struct {
				URI string `xml:"uri,attr"`
			} `xml:"Proxy"`
		} `xml:"Material"`
	} `xml:"Contents"`
}

type cueUpInfo struct {
	XMLName xml.Name `xml:"CueUpInfo"`
}

type discMeta struct {
	XMLName xml.Name `xml:"DiscMeta"`
}

type device struct {
	SerialNo  string `xml:"serialNo,attr"`
	ModelName string `xml:"modelName,attr"`
}

type deviceHolder interface {
	device() device
}

type nonRealTimeMeta struct {
	XMLName xml.Name `xml:"NonRealTimeMeta"`
	Device  device   `xml:"Device"`
}

func (m *nonRealTimeMeta) device() device { return m.Device }

type clipMetadata struct {
	XMLName     xml.Name `xml:"ClipMetadata"`
	Acquisition struct {
		Device device `xml:"Device"`
	} `xml:"Acquisition"`
}

func (m *clipMetadata) device() device { return m.Acquisition.Device }

type cameraMeta struct {
	XMLName xml.Name `xml:"CameraMeta"`
	Camera  struct {
		Device device `xml:"Device"`
	} `xml:"Camera"`
}

func (m *cameraMeta) device() device { return m.Camera.Device }

func extractMediaProfile(p *Parser, content []byte, sourcePath string) (*camera.IdentityRecord, error) {
	var doc mediaProfile
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	record := newRecord(doc.Properties.System.SystemID, doc.Properties.System.SystemKind, sourcePath)
	if record == nil {
		return nil, nil
	}
	baseDir := filepath.Dir(sourcePath)
	seen := make(map[string]struct{})
	addRef := func(uri string) {
		path, ok := resolveReference(baseDir, uri)
		if !ok || !p.isVideo(filepath.Ext(path)) {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		record.ReferencedVideoPaths = append(record.ReferencedVideoPaths, path)
	}
	for _, material := range doc.Contents.Materials {
		addRef(material.URI)
		for _, proxy := range material.Proxy {
			addRef(proxy.URI)
		}
	}
	return record, nil
}

func decodeOnly(newDoc func() any) func(*Parser, []byte, string) (*camera.IdentityRecord, error) {
	return func(_ *Parser, content []byte, _ string) (*camera.IdentityRecord, error) {
		return nil, xml.Unmarshal(content, newDoc())
	}
}

func extractDevice(newDoc func() deviceHolder) func(*Parser, []byte, string) (*camera.IdentityRecord, error) {
	return func(_ *Parser, content []byte, sourcePath string) (*camera.IdentityRecord, error) {
		doc := newDoc()
		if err := xml.Unmarshal(content, doc); err != nil {
			return nil, err
		}
		dev := doc.device()
		return newRecord(dev.SerialNo, dev.ModelName, sourcePath), nil
	}
}

// newRecord returns nil when serial is blank.
func newRecord(serial, model, sourcePath string) *camera.IdentityRecord {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = camera.UnknownModel
	}
	return &camera.IdentityRecord{
		SerialNumber:         serial,
		Model:                model,
		SourceDescriptorPath: sourcePath,
	}
}

// resolveReference turns a descriptor URI into an absolute, cleaned path.
// Relative references resolve against the descriptor's directory.
func resolveReference(baseDir, uri string) (string, bool) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(uri, "file://"); ok {
		uri = rest
		// file://localhost/path
		if host, path, found := strings.Cut(uri, "/"); found && isURIHost(host) {
			uri = "/" + path
		}
		if unescaped, err := url.PathUnescape(uri); err == nil {
			uri = unescaped
		}
	}
	path := filepath.FromSlash(uri)
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return filepath.Clean(path), true
}

func isURIHost(host string) bool {
	return host != "" && host != "." && host != ".." && !strings.Contains(host, ":")
}
