package alsfile

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// EncodeOptions controls Encode output.
type EncodeOptions struct {
	// Compress gzips the serialized XML. Live only opens compressed sets.
	Compress bool
	// Level is the gzip level; zero selects gzip.DefaultCompression.
	Level int
}

// DefaultEncodeOptions returns the options used by Encode.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Compress: true}
}

// Encode serializes the document and gzips it.
func Encode(doc *Document) ([]byte, error) {
	return EncodeWith(doc, DefaultEncodeOptions())
}

// EncodeWith serializes the document using opts.
func EncodeWith(doc *Document, opts EncodeOptions) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("encode: document has no root element")
	}

	var xmlBuf bytes.Buffer
	if err := writeXML(&xmlBuf, doc); err != nil {
		return nil, err
	}
	if !opts.Compress {
		return xmlBuf.Bytes(), nil
	}

	level := opts.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var out bytes.Buffer
	zw, err := gzip.NewWriterLevel(&out, level)
	if err != nil {
		return nil, fmt.Errorf("encode: gzip writer: %w", err)
	}
	if _, err := zw.Write(xmlBuf.Bytes()); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("encode: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("encode: compress: %w", err)
	}
	return out.Bytes(), nil
}

func writeXML(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	header := strings.TrimSpace(doc.Header)
	if header == "" {
		header = DefaultHeader
	}
	bw.WriteString(header)
	bw.WriteByte('\n')
	if err := writeNode(bw, doc.Root, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *RawNode, depth int) error {
	if n.Tag == "" {
		return errors.New("encode: element with empty tag")
	}
	indent(w, depth)
	w.WriteByte('<')
	w.WriteString(n.Tag)
	for _, a := range n.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return fmt.Errorf("encode: attribute %s: %w", a.Name, err)
		}
		w.WriteByte('"')
	}

	if len(n.Children) == 0 && n.Text == "" {
		w.WriteString(" />\n")
		return nil
	}
	w.WriteByte('>')
	if n.Text != "" {
		if err := xml.EscapeText(w, []byte(n.Text)); err != nil {
			return fmt.Errorf("encode: text of <%s>: %w", n.Tag, err)
		}
	}
	if len(n.Children) > 0 {
		w.WriteByte('\n')
		for _, c := range n.Children {
			if err := writeNode(w, c, depth+1); err != nil {
				return err
			}
		}
		indent(w, depth)
	}
	w.WriteString("</")
	w.WriteString(n.Tag)
	w.WriteString(">\n")
	return nil
}

func indent(w *bufio.Writer, depth int) {
	for range depth {
		w.WriteByte('\t')
	}
}
