package repository

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

const (
	// CodeSuccess is the registry result code for a successful call
	CodeSuccess = "0"
	// CodeParseError marks a response that could not be read at all
	CodeParseError = "-1"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Envelope is a decoded registry response.
// Payload is nil whenever the call did not succeed, including the case of a
// success code without an ApplData element; callers check Payload, not Code.
type Envelope struct {
	Payload *etree.Element
	Code    string
	Message string

	parseFailed bool
}

// Err converts an envelope without payload into an error
func (e Envelope) Err() error {
	if e.Payload != nil {
		return nil
	}
	if e.parseFailed {
		return fmt.Errorf("%w: %s", ErrParse, e.Message)
	}
	return fmt.Errorf("%w (code %s): %s", ErrAPI, e.Code, e.Message)
}

// DecodeEnvelope parses a registry XML response body
func DecodeEnvelope(body []byte) Envelope {
	body = bytes.TrimPrefix(body, utf8BOM)

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(body); err != nil {
		return Envelope{Code: CodeParseError, Message: parseErrorMessage(body, err), parseFailed: true}
	}

	root := doc.Root()
	if root == nil {
		return Envelope{Code: CodeParseError, Message: "XML parse error: document has no root element", parseFailed: true}
	}

	code := CodeParseError
	if el := root.FindElement("./Result/Code"); el != nil {
		code = strings.TrimSpace(el.Text())
	}
	message := "No message provided"
	if el := root.FindElement("./Result/Message"); el != nil {
		message = el.Text()
	}

	if code != CodeSuccess {
		return Envelope{Code: code, Message: message}
	}

	payload := root.SelectElement("ApplData")
	if payload == nil {
		return Envelope{Code: CodeSuccess, Message: "API returned success code 0 but no ApplData found."}
	}
	return Envelope{Payload: payload, Code: code, Message: message}
}

func parseErrorMessage(body []byte, err error) string {
	var syntaxErr *xml.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return fmt.Sprintf("Unexpected parsing error: %v", err)
	}

	lines := strings.Split(string(body), "\n")
	if syntaxErr.Line >= 1 && syntaxErr.Line <= len(lines) {
		line := strings.TrimRight(lines[syntaxErr.Line-1], "\r")
		return fmt.Sprintf("XML parse error: %s. Near line %d: '%s'", syntaxErr.Msg, syntaxErr.Line, line)
	}
	return fmt.Sprintf("XML parse error: %s", syntaxErr.Msg)
}
