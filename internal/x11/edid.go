package x11

import (
	"bytes"
	"strings"
)

var edidHeader = []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

const (
	edidBlockSize       = 128
	edidDescriptorStart = 54
	edidDescriptorSize  = 18
	edidDescriptorCount = 4
	edidTagMonitorName  = 0xfc
)

// edidMonitorName returns the monitor name descriptor of an EDID base block,
// or "" when the block is invalid or carries no name.
func edidMonitorName(edid []byte) string {
	if len(edid) < edidBlockSize || !bytes.Equal(edid[:len(edidHeader)], edidHeader) {
		return ""
	}
	for i := 0; i < edidDescriptorCount; i++ {
		off := edidDescriptorStart + i*edidDescriptorSize
		d := edid[off : off+edidDescriptorSize]
		// Display descriptors start with a zero pixel clock.
		if d[0] != 0 || d[1] != 0 || d[2] != 0 || d[3] != edidTagMonitorName {
			continue
		}
		text := d[5:]
		if n := bytes.IndexByte(text, '\n'); n >= 0 {
			text = text[:n]
		}
		name := strings.TrimSpace(strings.Map(func(r rune) rune {
			if r < 0x20 || r > 0x7e {
				return -1
			}
			return r
		}, string(text)))
		if name != "" {
			return name
		}
	}
	return ""
}
