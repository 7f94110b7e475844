package connect

import (
	"net/http"

	"github.com/beevik/etree"
)

// Response wraps one Adobe Connect API reply: status code, headers and the
// raw XML body. The body is parsed lazily on first structural query; if no
// query is ever made, no parsing cost is paid. A body that fails to parse
// still answers every query, just with empty results.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string

	doc *etree.Document
}

// NewResponse builds a Response from the three required values.
func NewResponse(statusCode int, header http.Header, body string) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{StatusCode: statusCode, Header: header, Body: body}
}

// Doc returns the parsed XML document, parsing the body on first access.
func (r *Response) Doc() *etree.Document {
	if r.doc == nil {
		doc := etree.NewDocument()
		if err := doc.ReadFromString(r.Body); err != nil {
			// Keep an empty document so queries return nothing.
			doc = etree.NewDocument()
		}
		r.doc = doc
	}
	return r.doc
}

// Find returns the first element matching the path, or nil.
func (r *Response) Find(path string) *etree.Element {
	return r.Doc().FindElement(path)
}

// FindAll returns every element matching the path.
func (r *Response) FindAll(path string) []*etree.Element {
	return r.Doc().FindElements(path)
}

// Text returns the text of the first element matching the path, or "".
func (r *Response) Text(path string) string {
	if el := r.Find(path); el != nil {
		return el.Text()
	}
	return ""
}

// Attr returns the named attribute of the first element matching the path,
// or "" when either is absent.
func (r *Response) Attr(path, name string) string {
	if el := r.Find(path); el != nil {
		return el.SelectAttrValue(name, "")
	}
	return ""
}

// OK reports whether the reply carries the Connect success status node.
func (r *Response) OK() bool {
	return r.Find("//status[@code='ok']") != nil
}
