package report

import (
	"encoding/xml"
	"fmt"
	"io"

	"instcheck/internal/domain"
)

const (
	rootElement   = "results"
	resultElement = "result"
)

// XMLWriter streams results as
//
//	<results><result name="..." status="passed|failed">message</result>...</results>
//
// Every result is flushed as soon as it is added.
type XMLWriter struct {
	w      io.Writer
	enc    *xml.Encoder
	closed bool
}

// xmlResult is the serialized form of a domain.Result.
type xmlResult struct {
	XMLName xml.Name      `xml:"result"`
	Name    string        `xml:"name,attr"`
	Status  domain.Status `xml:"status,attr"`
	Message string        `xml:",chardata"`
}

// NewXMLWriter writes the document header and opens the root element.
func NewXMLWriter(w io.Writer) (*XMLWriter, error) {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return nil, fmt.Errorf("write results header: %w", err)
	}
	x := &XMLWriter{w: w, enc: xml.NewEncoder(w)}
	if err := x.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: rootElement}}); err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	if err := x.enc.Flush(); err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	return x, nil
}

// Add writes one result element.
func (x *XMLWriter) Add(result domain.Result) error {
	if x.closed {
		return fmt.Errorf("add result %q: writer is closed", result.Name)
	}
	r := xmlResult{Name: result.Name, Status: result.Status, Message: result.Message}
	if err := x.enc.Encode(r); err != nil {
		return fmt.Errorf("write result %q: %w", result.Name, err)
	}
	return nil
}

// Close ends the root element. It is safe to call more than once; only the first
// call writes.
func (x *XMLWriter) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true
	if err := x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: rootElement}}); err != nil {
		return fmt.Errorf("close results: %w", err)
	}
	if err := x.enc.Flush(); err != nil {
		return fmt.Errorf("close results: %w", err)
	}
	if _, err := io.WriteString(x.w, "\n"); err != nil {
		return fmt.Errorf("close results: %w", err)
	}
	return nil
}

// ReadResults parses a document written by XMLWriter.
func ReadResults(r io.Reader) ([]domain.Result, error) {
	var doc struct {
		XMLName xml.Name    `xml:"results"`
		Results []xmlResult `xml:"result"`
	}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	results := make([]domain.Result, 0, len(doc.Results))
	for _, r := range doc.Results {
		if r.Status != domain.StatusPassed && r.Status != domain.StatusFailed {
			return nil, fmt.Errorf("parse results: result %q has unknown status %q", r.Name, r.Status)
		}
		results = append(results, domain.Result{Name: r.Name, Status: r.Status, Message: r.Message})
	}
	return results, nil
}
