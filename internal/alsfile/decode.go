package alsfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DefaultHeader is written when a decoded document carried no declaration.
const DefaultHeader = `<?xml version="1.0" encoding="UTF-8"?>`

var gzipMagic = []byte{0x1f, 0x8b}

// IsCompressed reports whether data starts with the gzip magic bytes.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Decode decompresses and parses a container. Bytes without the gzip magic
// are parsed as plain XML.
func Decode(data []byte) (*Document, error) {
	raw := data
	if IsCompressed(data) {
		inflated, err := decompress(data)
		if err != nil {
			return nil, compressionError(err)
		}
		raw = inflated
	}
	return parse(raw)
}

func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parse(raw []byte) (*Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, malformedError("empty document")
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	doc := &Document{}
	var (
		stack []*RawNode
		texts []strings.Builder
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			return nil, malformedError("line %d: %v", line, err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" && doc.Root == nil && len(stack) == 0 && doc.Header == "" {
				doc.Header = "<?xml " + string(t.Inst) + "?>"
			}
		case xml.StartElement:
			if len(stack) == 0 && doc.Root != nil {
				return nil, malformedError("multiple root elements (second is <%s>)", qualified(t.Name))
			}
			node := &RawNode{Tag: qualified(t.Name)}
			if len(t.Attr) > 0 {
				node.Attrs = make([]Attr, len(t.Attr))
				for i, a := range t.Attr {
					node.Attrs[i] = Attr{Name: qualified(a.Name), Value: a.Value}
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				doc.Root = node
			}
			stack = append(stack, node)
			texts = append(texts, strings.Builder{})
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, malformedError("unexpected closing tag </%s>", qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if name := qualified(t.Name); name != top.Tag {
				return nil, malformedError("closing tag </%s> does not match <%s>", name, top.Tag)
			}
			top.Text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, malformedError("character data outside the root element")
				}
				continue
			}
			texts[len(texts)-1].Write(t)
		case xml.Comment, xml.Directive:
			// not needed downstream
		}
	}

	if len(stack) > 0 {
		return nil, malformedError("unexpected end of document inside <%s>", stack[len(stack)-1].Tag)
	}
	if doc.Root == nil {
		return nil, malformedError("no root element")
	}
	return doc, nil
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
