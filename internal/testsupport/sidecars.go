package testsupport

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// WriteMediaProfile writes a MediaProfile descriptor at path declaring serial
// and model. Each ref becomes a Material URI relative to the descriptor's
// directory when possible.
func WriteMediaProfile(t testing.TB, path, serial, model string, refs ...string) {
	t.Helper()

	dir := filepath.Dir(path)
	var materials strings.Builder
	for _, ref := range refs {
		uri := ref
		if rel, err := filepath.Rel(dir, ref); err == nil && !strings.HasPrefix(rel, "..") {
			uri = "./" + filepath.ToSlash(rel)
		}
		fmt.Fprintf(&materials, "    <Material uri=\"%s\" type=\"MXF\"/>\n", escape(uri))
	}

	WriteText(t, path, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<MediaProfile xmlns="http://xmlns.sony.net/pro/metadata/mediaprofile" version="1.20">
  <Properties>
    <System systemId="%s" systemKind="%s"/>
  </Properties>
  <Contents>
%s  </Contents>
</MediaProfile>
`, escape(serial), escape(model), materials.String()))
}

// WriteDeviceMeta writes a NonRealTimeMeta descriptor with a Device block.
func WriteDeviceMeta(t testing.TB, path, serial, model string) {
	t.Helper()

	WriteText(t, path, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<NonRealTimeMeta xmlns="urn:schemas-professionalDisc:nonRealTimeMeta:ver.2.00">
  <Device manufacturer="Sony" modelName="%s" serialNo="%s"/>
</NonRealTimeMeta>
`, escape(model), escape(serial)))
}

func escape(value string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(value))
	return b.String()
}
