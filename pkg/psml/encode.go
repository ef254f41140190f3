package psml

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Encode writes doc to w as PSML. Prolog nodes are each followed by a
// newline; element content is written exactly as modelled, with no
// indentation added.
func Encode(w io.Writer, doc *Document) error {
	if doc == nil || doc.Root == nil {
		return &EncodeError{Path: "/", Err: ErrNilRoot}
	}

	enc := &encoder{}

	for i, n := range doc.Prolog {
		err := enc.prologNode(n, i == 0, "/"+step(doc.Prolog, i))
		if err != nil {
			return err
		}

		enc.buf.WriteByte('\n')
	}

	err := enc.element(doc.Root, "/"+step([]Node{doc.Root}, 0))
	if err != nil {
		return err
	}

	for i, n := range doc.Epilog {
		enc.buf.WriteByte('\n')

		err = enc.prologNode(n, false, "/"+step(doc.Epilog, i))
		if err != nil {
			return err
		}
	}

	_, err = w.Write(enc.buf.Bytes())
	if err != nil {
		return fmt.Errorf("writing psml: %w", err)
	}

	return nil
}

// Marshal returns the PSML encoding of doc.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	err := Encode(&buf, doc)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeNode writes a single node and its descendants.
func EncodeNode(w io.Writer, n Node) error {
	enc := &encoder{}

	err := enc.node(n, "/"+step([]Node{n}, 0))
	if err != nil {
		return err
	}

	_, err = w.Write(enc.buf.Bytes())
	if err != nil {
		return fmt.Errorf("writing psml: %w", err)
	}

	return nil
}

// MarshalNode returns the encoding of a single node.
func MarshalNode(n Node) ([]byte, error) {
	var buf bytes.Buffer

	err := EncodeNode(&buf, n)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type encoder struct {
	buf bytes.Buffer
}

func (enc *encoder) prologNode(n Node, first bool, path string) error {
	switch n := n.(type) {
	case *Comment, *Directive:
		return enc.node(n, path)
	case *ProcInst:
		if strings.EqualFold(n.Target, "xml") && !first {
			return &EncodeError{Path: path, Err: fmt.Errorf("%w: XML declaration must come first", ErrInvalidProcInst)}
		}

		return enc.procInst(n, path)
	default:
		return &EncodeError{Path: path, Err: fmt.Errorf("%w: %T outside root element", ErrUnsupportedNode, n)}
	}
}

func (enc *encoder) node(n Node, path string) error {
	switch n := n.(type) {
	case Element:
		return enc.element(n, path)
	case *Text:
		if err := checkChars(n.Data); err != nil {
			return &EncodeError{Path: path, Err: err}
		}

		escapeText(&enc.buf, n.Data)
	case *Comment:
		if err := checkComment(n.Data); err != nil {
			return &EncodeError{Path: path, Err: err}
		}

		enc.buf.WriteString("<!--")
		enc.buf.WriteString(n.Data)
		enc.buf.WriteString("-->")
	case *ProcInst:
		if strings.EqualFold(n.Target, "xml") {
			return &EncodeError{Path: path, Err: fmt.Errorf("%w: XML declaration inside element", ErrInvalidProcInst)}
		}

		return enc.procInst(n, path)
	case *Directive:
		if n.Data == "" {
			return &EncodeError{Path: path, Err: ErrInvalidDirective}
		}

		if err := checkChars(n.Data); err != nil {
			return &EncodeError{Path: path, Err: err}
		}

		enc.buf.WriteString("<!")
		enc.buf.WriteString(n.Data)
		enc.buf.WriteByte('>')
	default:
		return &EncodeError{Path: path, Err: fmt.Errorf("%w: %T", ErrUnsupportedNode, n)}
	}

	return nil
}

func (enc *encoder) procInst(p *ProcInst, path string) error {
	if !isName(p.Target) {
		return &EncodeError{Path: path, Err: fmt.Errorf("%w: target %q", ErrInvalidName, p.Target)}
	}

	if strings.Contains(p.Inst, "?>") {
		return &EncodeError{Path: path, Err: fmt.Errorf("%w: contains \"?>\"", ErrInvalidProcInst)}
	}

	if err := checkChars(p.Inst); err != nil {
		return &EncodeError{Path: path, Err: err}
	}

	enc.buf.WriteString("<?")
	enc.buf.WriteString(p.Target)

	if p.Inst != "" {
		enc.buf.WriteByte(' ')
		enc.buf.WriteString(p.Inst)
	}

	enc.buf.WriteString("?>")

	return nil
}

func (enc *encoder) element(e Element, path string) error {
	if e == nil {
		return &EncodeError{Path: path, Err: ErrUnsupportedNode}
	}

	tag := e.Tag()
	if !isName(tag) {
		return &EncodeError{Path: path, Err: fmt.Errorf("%w: tag %q", ErrInvalidName, tag)}
	}

	enc.buf.WriteByte('<')
	enc.buf.WriteString(tag)

	attrs := e.Attrs().All()
	for i, a := range attrs {
		if !isName(a.Name) {
			return &EncodeError{Path: path + "/@" + a.Name, Err: fmt.Errorf("%w: attribute %q", ErrInvalidName, a.Name)}
		}

		for _, prev := range attrs[:i] {
			if prev.Name == a.Name {
				return &EncodeError{Path: path + "/@" + a.Name, Err: ErrDuplicateAttr}
			}
		}

		if err := checkChars(a.Value); err != nil {
			return &EncodeError{Path: path + "/@" + a.Name, Err: err}
		}

		enc.buf.WriteByte(' ')
		enc.buf.WriteString(a.Name)
		enc.buf.WriteString(`="`)
		escapeAttr(&enc.buf, a.Value)
		enc.buf.WriteByte('"')
	}

	children := e.Children()
	if len(children) == 0 {
		enc.buf.WriteString("/>")

		return nil
	}

	enc.buf.WriteByte('>')

	for i, c := range children {
		err := enc.node(c, path+"/"+step(children, i))
		if err != nil {
			return err
		}
	}

	enc.buf.WriteString("</")
	enc.buf.WriteString(tag)
	enc.buf.WriteByte('>')

	return nil
}

// step names siblings[i] as an XPath-like location step with a 1-based
// position among siblings of the same name.
func step(siblings []Node, i int) string {
	name := stepName(siblings[i])
	pos := 0

	for _, s := range siblings[:i+1] {
		if stepName(s) == name {
			pos++
		}
	}

	return name + "[" + strconv.Itoa(pos) + "]"
}

func stepName(n Node) string {
	switch n := n.(type) {
	case Element:
		return n.Tag()
	case *Text:
		return "text()"
	case *Comment:
		return "comment()"
	case *ProcInst:
		return "processing-instruction()"
	case *Directive:
		return "directive()"
	default:
		return "node()"
	}
}

func escapeText(buf *bytes.Buffer, s string) {
	last := 0

	for i := 0; i < len(s); i++ {
		var esc string

		switch s[i] {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '\r':
			esc = "&#xD;"
		default:
			continue
		}

		buf.WriteString(s[last:i])
		buf.WriteString(esc)
		last = i + 1
	}

	buf.WriteString(s[last:])
}

func escapeAttr(buf *bytes.Buffer, s string) {
	last := 0

	for i := 0; i < len(s); i++ {
		var esc string

		switch s[i] {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '"':
			esc = "&quot;"
		case '\t':
			esc = "&#x9;"
		case '\n':
			esc = "&#xA;"
		case '\r':
			esc = "&#xD;"
		default:
			continue
		}

		buf.WriteString(s[last:i])
		buf.WriteString(esc)
		last = i + 1
	}

	buf.WriteString(s[last:])
}

func checkChars(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrInvalidChar, i)
			}
		}

		if !isChar(r) {
			return fmt.Errorf("%w: %U at byte %d", ErrInvalidChar, r, i)
		}
	}

	return nil
}

func checkComment(s string) error {
	if strings.Contains(s, "--") || strings.HasSuffix(s, "-") {
		return ErrInvalidComment
	}

	return checkChars(s)
}

// isChar reports whether r is in the XML 1.0 Char production.
func isChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func isName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !isNameStart(r) {
				return false
			}

			continue
		}

		if !isNameChar(r) {
			return false
		}
	}

	return true
}

func isNameStart(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isNameChar(r rune) bool {
	return isNameStart(r) ||
		r == '-' || r == '.' || r == 0xB7 || r == 0x0387 ||
		unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me, unicode.Lm, unicode.Nd)
}
