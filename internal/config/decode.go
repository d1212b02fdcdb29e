package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Z1ni/disp/internal/disperr"
	"github.com/Z1ni/disp/internal/preset"
)

// Decode parses a preset document. source names the document in error
// messages and may be empty.
//
// The document is JSON, which yaml.v3 parses into a node tree that keeps the
// line and column of every value. Validation is strict: the first missing,
// unknown, duplicated or mistyped field aborts the whole decode. YAML-only
// notation (block collections, unquoted or single-quoted strings, hex
// integers, anchors, comments, further documents) is rejected.
func Decode(data []byte, source string) (*preset.Store, error) {
	empty := &disperr.Error{Kind: disperr.KindSchema, Source: source, Line: 1, Column: 1, Err: errors.New("document is empty")}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, empty
		}
		return nil, parseError(err, source)
	}
	d := &decoder{source: source}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, empty
	}
	if err := d.plain(&doc, ""); err != nil {
		return nil, err
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, parseError(err, source)
	default:
		return nil, d.fail(&extra, "", "unexpected content after the document")
	}
	return d.store(doc.Content[0])
}

var (
	yamlLineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)
	jsonIntRe  = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
)

func parseError(err error, source string) error {
	out := &disperr.Error{Kind: disperr.KindParse, Source: source, Err: err}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		out.Line, _ = strconv.Atoi(m[1])
		out.Err = errors.New(m[2])
	}
	return out
}

type decoder struct {
	source string
}

func (d *decoder) fail(node *yaml.Node, path string, format string, args ...any) error {
	return &disperr.Error{
		Kind:   disperr.KindSchema,
		Path:   path,
		Source: d.source,
		Line:   node.Line,
		Column: node.Column,
		Err:    fmt.Errorf(format, args...),
	}
}

// plain rejects anchors and comments, neither of which JSON has.
func (d *decoder) plain(node *yaml.Node, path string) error {
	if node.Anchor != "" {
		return d.fail(node, path, "anchors are not allowed")
	}
	if node.HeadComment != "" || node.LineComment != "" || node.FootComment != "" {
		return d.fail(node, path, "comments are not allowed")
	}
	return nil
}

// syntax checks that node was written the way JSON writes it.
func (d *decoder) syntax(node *yaml.Node, path string, want yaml.Style) error {
	if err := d.plain(node, path); err != nil {
		return err
	}
	if node.Style != want {
		return d.fail(node, path, "%s must be written in JSON syntax", describe(node))
	}
	return nil
}

func (d *decoder) store(root *yaml.Node) (*preset.Store, error) {
	fields, err := d.object(root, "", "app", "presets")
	if err != nil {
		return nil, err
	}

	app, err := d.object(fields["app"], "app", "notify_on_start")
	if err != nil {
		return nil, err
	}
	notify, err := d.boolean(app["notify_on_start"], "app.notify_on_start")
	if err != nil {
		return nil, err
	}

	items, err := d.array(fields["presets"], "presets")
	if err != nil {
		return nil, err
	}

	s := preset.NewStore()
	s.NotifyOnStart = notify
	for i, item := range items {
		path := fmt.Sprintf("presets[%d]", i)
		p, nameNode, err := d.presetEntry(item, path)
		if err != nil {
			return nil, err
		}
		if idx, dup := s.FindPresetIndex(p.Name); dup {
			return nil, d.fail(nameNode, path+".name", "duplicate preset name %q (already used by presets[%d])", p.Name, idx)
		}
		s.Presets = append(s.Presets, p)
	}
	return s, nil
}

func (d *decoder) presetEntry(node *yaml.Node, path string) (preset.Preset, *yaml.Node, error) {
	fields, err := d.object(node, path, "name", "displays")
	if err != nil {
		return preset.Preset{}, nil, err
	}
	name, err := d.str(fields["name"], path+".name")
	if err != nil {
		return preset.Preset{}, nil, err
	}
	items, err := d.array(fields["displays"], path+".displays")
	if err != nil {
		return preset.Preset{}, nil, err
	}

	p := preset.Preset{Name: name, Displays: make([]preset.DisplaySettings, 0, len(items))}
	for i, item := range items {
		dpath := fmt.Sprintf("%s.displays[%d]", path, i)
		ds, pathNode, err := d.display(item, dpath)
		if err != nil {
			return preset.Preset{}, nil, err
		}
		if _, dup := p.FindDisplay(ds.DevicePath); dup {
			return preset.Preset{}, nil, d.fail(pathNode, dpath+".display", "duplicate display %q in preset", ds.DevicePath)
		}
		p.Displays = append(p.Displays, ds)
	}
	return p, fields["name"], nil
}

func (d *decoder) display(node *yaml.Node, path string) (preset.DisplaySettings, *yaml.Node, error) {
	var ds preset.DisplaySettings

	fields, err := d.object(node, path, "display", "orientation", "position", "resolution")
	if err != nil {
		return ds, nil, err
	}

	if ds.DevicePath, err = d.str(fields["display"], path+".display"); err != nil {
		return ds, nil, err
	}
	if ds.DevicePath == "" {
		return ds, nil, d.fail(fields["display"], path+".display", "device path is empty")
	}

	o, err := d.integer(fields["orientation"], path+".orientation")
	if err != nil {
		return ds, nil, err
	}
	ds.Orientation = preset.Orientation(o)
	if !ds.Orientation.Valid() {
		return ds, nil, d.fail(fields["orientation"], path+".orientation", "orientation %d out of range (0-3)", o)
	}

	pos, err := d.object(fields["position"], path+".position", "x", "y")
	if err != nil {
		return ds, nil, err
	}
	if ds.Position.X, err = d.integer(pos["x"], path+".position.x"); err != nil {
		return ds, nil, err
	}
	if ds.Position.Y, err = d.integer(pos["y"], path+".position.y"); err != nil {
		return ds, nil, err
	}

	res, err := d.object(fields["resolution"], path+".resolution", "width", "height")
	if err != nil {
		return ds, nil, err
	}
	if ds.Resolution.Width, err = d.integer(res["width"], path+".resolution.width"); err != nil {
		return ds, nil, err
	}
	if ds.Resolution.Height, err = d.integer(res["height"], path+".resolution.height"); err != nil {
		return ds, nil, err
	}

	return ds, fields["display"], nil
}

// object checks that node is a mapping holding exactly the given keys.
func (d *decoder) object(node *yaml.Node, path string, keys ...string) (map[string]*yaml.Node, error) {
	where := path
	if where == "" {
		where = "document"
	}
	if node.Kind != yaml.MappingNode {
		return nil, d.fail(node, path, "expected an object, found %s", describe(node))
	}
	if err := d.syntax(node, path, yaml.FlowStyle); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}

	out := make(map[string]*yaml.Node, len(keys))
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value
		child := key
		if path != "" {
			child = path + "." + key
		}
		if keyNode.Kind != yaml.ScalarNode || keyNode.Tag != "!!str" {
			return nil, d.fail(keyNode, path, "object keys must be strings")
		}
		if err := d.syntax(keyNode, child, yaml.DoubleQuotedStyle); err != nil {
			return nil, err
		}
		if !allowed[key] {
			return nil, d.fail(keyNode, child, "unknown field %q in %s", key, where)
		}
		if _, dup := out[key]; dup {
			return nil, d.fail(keyNode, child, "field %q defined twice", key)
		}
		out[key] = valNode
	}

	for _, k := range keys {
		if _, ok := out[k]; !ok {
			child := k
			if path != "" {
				child = path + "." + k
			}
			return nil, d.fail(node, child, "missing required field %q", k)
		}
	}
	return out, nil
}

func (d *decoder) array(node *yaml.Node, path string) ([]*yaml.Node, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, d.fail(node, path, "expected an array, found %s", describe(node))
	}
	if err := d.syntax(node, path, yaml.FlowStyle); err != nil {
		return nil, err
	}
	return node.Content, nil
}

func (d *decoder) str(node *yaml.Node, path string) (string, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return "", d.fail(node, path, "expected a string, found %s", describe(node))
	}
	if err := d.syntax(node, path, yaml.DoubleQuotedStyle); err != nil {
		return "", err
	}
	return node.Value, nil
}

func (d *decoder) integer(node *yaml.Node, path string) (int, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!int" {
		return 0, d.fail(node, path, "expected an integer, found %s", describe(node))
	}
	if err := d.syntax(node, path, 0); err != nil {
		return 0, err
	}
	if !jsonIntRe.MatchString(node.Value) {
		return 0, d.fail(node, path, "integer %q is not in decimal JSON form", node.Value)
	}
	v, err := strconv.ParseInt(node.Value, 10, 64)
	if err != nil {
		return 0, d.fail(node, path, "invalid integer %q", node.Value)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, d.fail(node, path, "integer %d out of range", v)
	}
	return int(v), nil
}

func (d *decoder) boolean(node *yaml.Node, path string) (bool, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!bool" {
		return false, d.fail(node, path, "expected a boolean, found %s", describe(node))
	}
	if err := d.syntax(node, path, 0); err != nil {
		return false, err
	}
	switch node.Value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, d.fail(node, path, "boolean %q must be written true or false", node.Value)
}

func describe(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "an object"
	case yaml.SequenceNode:
		return "an array"
	case yaml.AliasNode:
		return "an alias"
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			return "a string"
		case "!!int":
			return "an integer"
		case "!!float":
			return "a number with a fraction"
		case "!!bool":
			return "a boolean"
		case "!!null":
			return "null"
		}
		return "a " + node.ShortTag() + " value"
	}
	return "nothing"
}
