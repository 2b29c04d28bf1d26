// Package fetchxml emits FetchXML markup from a validated query AST.
//
// The document model mirrors the target platform's schema. Struct field
// order is load-bearing: encoding/xml marshals attributes and child
// elements in declaration order, which gives the deterministic layout
// the compiler guarantees (attributes, then filters, then link
// entities, then orders).
package fetchxml

import "encoding/xml"

// Document is the fetch root element.
type Document struct {
	XMLName                xml.Name `xml:"fetch"`
	Version                string   `xml:"version,attr"`
	OutputFormat           string   `xml:"output-format,attr,omitempty"`
	Mapping                string   `xml:"mapping,attr"`
	Distinct               string   `xml:"distinct,attr,omitempty"`
	Aggregate              string   `xml:"aggregate,attr,omitempty"`
	Top                    string   `xml:"top,attr,omitempty"`
	Page                   string   `xml:"page,attr,omitempty"`
	Count                  string   `xml:"count,attr,omitempty"`
	NoLock                 string   `xml:"no-lock,attr,omitempty"`
	ReturnTotalRecordCount string   `xml:"returntotalrecordcount,attr,omitempty"`
	Entity                 Entity   `xml:"entity"`
}

// Entity is the single root entity element.
type Entity struct {
	Name          string         `xml:"name,attr"`
	AllAttributes *AllAttributes `xml:"all-attributes"`
	Attributes    []Attribute    `xml:"attribute"`
	Filters       []Filter       `xml:"filter"`
	Links         []LinkEntity   `xml:"link-entity"`
	Orders        []Order        `xml:"order"`
}

// AllAttributes is the all-attributes marker emitted for .* selections.
type AllAttributes struct{}

// Attribute is one attribute element: a plain selection, a grouping
// attribute (groupby plus optional dategrouping), or an aggregation
// (aggregate plus alias).
type Attribute struct {
	Name         string `xml:"name,attr"`
	Alias        string `xml:"alias,attr,omitempty"`
	Aggregate    string `xml:"aggregate,attr,omitempty"`
	GroupBy      string `xml:"groupby,attr,omitempty"`
	DateGrouping string `xml:"dategrouping,attr,omitempty"`
}

// Filter is a condition group. Nested groups preserve the author's
// explicit and/or boundaries.
type Filter struct {
	Type       string      `xml:"type,attr"`
	Conditions []Condition `xml:"condition"`
	Filters    []Filter    `xml:"filter"`
}

// Condition is one comparison. Single-valued operators carry the value
// as an attribute; list operators carry one value child per element.
type Condition struct {
	Attribute  string   `xml:"attribute,attr"`
	EntityName string   `xml:"entityname,attr,omitempty"`
	Operator   string   `xml:"operator,attr"`
	Value      *string  `xml:"value,attr,omitempty"`
	Values     []string `xml:"value"`
}

// LinkEntity is a join to a related entity, recursively owning its own
// attributes, filters, child links and orders.
type LinkEntity struct {
	Name          string         `xml:"name,attr"`
	From          string         `xml:"from,attr"`
	To            string         `xml:"to,attr"`
	Alias         string         `xml:"alias,attr"`
	LinkType      string         `xml:"link-type,attr"`
	AllAttributes *AllAttributes `xml:"all-attributes"`
	Attributes    []Attribute    `xml:"attribute"`
	Filters       []Filter       `xml:"filter"`
	Links         []LinkEntity   `xml:"link-entity"`
	Orders        []Order        `xml:"order"`
}

// Order is one order element. Plain queries sort by attribute name;
// aggregate queries sort by aggregation alias.
type Order struct {
	Attribute  string `xml:"attribute,attr,omitempty"`
	Alias      string `xml:"alias,attr,omitempty"`
	Descending string `xml:"descending,attr,omitempty"`
}
