package fbx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// arrayCount is the "*N" marker that precedes an ASCII array block.
type arrayCount int

var asciiVersionRE = regexp.MustCompile(`FBXVersion:\s*(\d+)`)

// parseASCII decodes an ASCII FBX file into the same element tree shape the
// binary parser produces.
func parseASCII(data []byte) (*Element, uint32, error) {
	p := &asciiParser{src: data, line: 1}
	root := &Element{}
	for {
		p.skipSpace(true)
		if p.eof() {
			break
		}
		if p.peek() == '}' {
			return nil, 0, p.errorf("unexpected '}'")
		}
		el, err := p.element()
		if err != nil {
			return nil, 0, err
		}
		root.Children = append(root.Children, el)
	}

	var version uint32
	if m := asciiVersionRE.FindSubmatch(data); m != nil {
		v, _ := strconv.ParseUint(string(m[1]), 10, 32)
		version = uint32(v)
	}
	return root, version, nil
}

type asciiParser struct {
	src  []byte
	off  int
	line int
}

func (p *asciiParser) eof() bool  { return p.off >= len(p.src) }
func (p *asciiParser) peek() byte { return p.src[p.off] }

func (p *asciiParser) errorf(format string, args ...any) error {
	return fmt.Errorf("fbx: ascii line %d: %s", p.line, fmt.Sprintf(format, args...))
}

// skipSpace skips blanks and ';' comments. Newlines are only crossed when
// newlines is set, since a line break ends a property value list.
func (p *asciiParser) skipSpace(newlines bool) {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\n':
			if !newlines {
				return
			}
			p.line++
			p.off++
		case c == ' ' || c == '\t' || c == '\r':
			p.off++
		case c == ';':
			for !p.eof() && p.peek() != '\n' {
				p.off++
			}
		default:
			return
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '|' || c == '-' || c == '+' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *asciiParser) word() string {
	start := p.off
	for !p.eof() && isIdentByte(p.peek()) {
		p.off++
	}
	return string(p.src[start:p.off])
}

func (p *asciiParser) element() (*Element, error) {
	name := p.word()
	if name == "" {
		return nil, p.errorf("expected key, found %q", p.peek())
	}
	if p.eof() || p.peek() != ':' {
		return nil, p.errorf("expected ':' after %q", name)
	}
	p.off++
	el := &Element{Name: name}

	p.skipSpace(false)
	if !p.eof() && p.peek() != '{' && p.peek() != '\n' {
		props, err := p.values()
		if err != nil {
			return nil, err
		}
		el.Props = props
	}

	p.skipSpace(false)
	if !p.eof() && p.peek() == '{' {
		p.off++
		for {
			p.skipSpace(true)
			if p.eof() {
				return nil, p.errorf("unterminated block %q", name)
			}
			if p.peek() == '}' {
				p.off++
				break
			}
			child, err := p.element()
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		}
	}

	if len(el.Props) == 1 {
		if _, ok := el.Props[0].(arrayCount); ok {
			el.Props = []any{numericArray(el.Child("a"))}
			el.Children = nil
		}
	}
	return el, nil
}

// values reads a comma separated value list. A trailing comma continues the
// list onto the next line, as long arrays do in older exporters.
func (p *asciiParser) values() ([]any, error) {
	var out []any
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace(false)
		if p.eof() || p.peek() != ',' {
			return out, nil
		}
		p.off++
		p.skipSpace(true)
	}
}

func (p *asciiParser) value() (any, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of file")
	}
	switch c := p.peek(); {
	case c == ',':
		// Empty leading value, e.g. "Content: ,".
		return "", nil
	case c == '"':
		p.off++
		start := p.off
		for !p.eof() && p.peek() != '"' {
			if p.peek() == '\n' {
				p.line++
			}
			p.off++
		}
		if p.eof() {
			return nil, p.errorf("unterminated string")
		}
		s := string(p.src[start:p.off])
		p.off++
		return strings.ReplaceAll(s, "&quot;", `"`), nil
	case c == '*':
		p.off++
		n, err := strconv.Atoi(p.word())
		if err != nil {
			return nil, p.errorf("bad array count: %v", err)
		}
		return arrayCount(n), nil
	case isIdentByte(c):
		w := p.word()
		if i, err := strconv.ParseInt(w, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			return f, nil
		}
		return w, nil
	}
	return nil, p.errorf("unexpected %q", p.peek())
}

// numericArray folds the values of an "a:" element into a single typed slice.
func numericArray(a *Element) any {
	if a == nil {
		return []int64{}
	}
	ints := make([]int64, 0, len(a.Props))
	for _, v := range a.Props {
		n, ok := v.(int64)
		if !ok {
			ints = nil
			break
		}
		ints = append(ints, n)
	}
	if ints != nil {
		return ints
	}
	floats := make([]float64, 0, len(a.Props))
	for i := range a.Props {
		f, _ := a.Float64(i)
		floats = append(floats, f)
	}
	return floats
}
