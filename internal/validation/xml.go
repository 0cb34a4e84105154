// Package validation checks XML documents for well-formedness.
package validation

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/xliff-fixer/internal/types"
)

// UnknownParseError is reported when the parser fails without a message.
const UnknownParseError = "Unknown XML parsing error"

// byteOrderMark is accepted at the very start of a document.
const byteOrderMark = "\uFEFF"

// Validate parses xmlText and reports whether it is a well-formed XML document.
// It never panics: parser failures, including unexpected ones, become an invalid outcome
// carrying exactly one error message.
func Validate(xmlText string) (outcome types.ValidationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = invalid(fmt.Sprintf("XML parser failed unexpectedly: %v", r))
		}
	}()

	if err := checkWellFormed(xmlText); err != nil {
		return invalid(err.Error())
	}
	return types.ValidationOutcome{IsValid: true, Errors: []string{}}
}

func invalid(message string) types.ValidationOutcome {
	if strings.TrimSpace(message) == "" {
		message = UnknownParseError
	}
	return types.ValidationOutcome{IsValid: false, Errors: []string{message}}
}

// Namespace URIs bound to the reserved prefixes.
const (
	xmlNamespace   = "http://www.w3.org/XML/1998/namespace"
	xmlnsNamespace = "http://www.w3.org/2000/xmlns/"
)

// element is an open element and the prefixes it declares.
type element struct {
	name     xml.Name
	prefixes map[string]string
}

type elementStack []element

// lookup resolves prefix against the declarations in scope.
func (s elementStack) lookup(prefix string) (string, bool) {
	switch prefix {
	case "xml":
		return xmlNamespace, true
	case "xmlns":
		return xmlnsNamespace, true
	}
	for i := len(s) - 1; i >= 0; i-- {
		if uri, ok := s[i].prefixes[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// checkWellFormed walks every raw token of the document. encoding/xml accepts fragments,
// repeated attributes and undeclared prefixes, so element nesting, the single-root and
// prolog rules, attribute uniqueness and namespace scope are enforced here.
func checkWellFormed(xmlText string) error {
	xmlText = strings.TrimPrefix(xmlText, byteOrderMark)

	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	decoder.Strict = true
	// The text is already decoded; the declared encoding is only a label.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var stack elementStack
	roots := 0
	for {
		offset := decoder.InputOffset()
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				roots++
				if roots > 1 {
					return positionError(decoder, "junk after document element")
				}
			}
			open, err := openElement(stack, t)
			if err != nil {
				return positionError(decoder, err.Error())
			}
			stack = append(stack, open)
		case xml.EndElement:
			if len(stack) == 0 {
				return positionError(decoder, fmt.Sprintf("unexpected end element </%s>", rawName(t.Name)))
			}
			top := stack[len(stack)-1]
			if top.name != t.Name {
				return positionError(decoder, fmt.Sprintf("element <%s> closed by </%s>", rawName(top.name), rawName(t.Name)))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return positionError(decoder, "text content outside the document element")
			}
		case xml.ProcInst:
			if t.Target == "xml" && offset != 0 {
				return positionError(decoder, "XML declaration allowed only at the start of the document")
			}
		}
	}

	if len(stack) > 0 {
		return positionError(decoder, fmt.Sprintf("unexpected end of document: <%s> is not closed", rawName(stack[len(stack)-1].name)))
	}
	if roots == 0 {
		return &Error{Message: "no root element found"}
	}
	return nil
}

// openElement records the prefixes start declares, then checks that its name and
// attribute names use declared prefixes and that no two attributes share an expanded name.
func openElement(stack elementStack, start xml.StartElement) (element, error) {
	open := element{name: start.Name}
	for _, attr := range start.Attr {
		if attr.Name.Space != "xmlns" {
			continue
		}
		if attr.Value == "" {
			return element{}, fmt.Errorf("namespace prefix %q bound to an empty URI", attr.Name.Local)
		}
		if open.prefixes == nil {
			open.prefixes = make(map[string]string)
		}
		open.prefixes[attr.Name.Local] = attr.Value
	}

	scope := append(stack[:len(stack):len(stack)], open)
	if start.Name.Space != "" {
		if _, ok := scope.lookup(start.Name.Space); !ok {
			return element{}, fmt.Errorf("undeclared namespace prefix %q on element <%s>", start.Name.Space, rawName(start.Name))
		}
	}

	seen := make(map[string]bool, len(start.Attr))
	for _, attr := range start.Attr {
		key := attr.Name.Local
		if attr.Name.Space != "" {
			uri, ok := scope.lookup(attr.Name.Space)
			if !ok {
				return element{}, fmt.Errorf("undeclared namespace prefix %q on attribute %s", attr.Name.Space, rawName(attr.Name))
			}
			key = "{" + uri + "}" + attr.Name.Local
		}
		if seen[key] {
			return element{}, fmt.Errorf("duplicate attribute %s on element <%s>", rawName(attr.Name), rawName(start.Name))
		}
		seen[key] = true
	}
	return open, nil
}

func rawName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func positionError(decoder *xml.Decoder, message string) error {
	line, column := decoder.InputPos()
	return &Error{Message: fmt.Sprintf("line %d, column %d: %s", line, column, message)}
}
