package graph

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

type gexfFile struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Meta    gexfMeta  `xml:"meta"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfMeta struct {
	LastModified string `xml:"lastmodifieddate,attr"`
	Creator      string `xml:"creator"`
	Description  string `xml:"description"`
}

type gexfGraph struct {
	DefaultEdgeType  string               `xml:"defaultedgetype,attr"`
	Mode             string               `xml:"mode,attr"`
	AttributeClasses []gexfAttributeClass `xml:"attributes"`
	Nodes            gexfNodes            `xml:"nodes"`
	Edges            gexfEdges            `xml:"edges"`
}

type gexfAttributeClass struct {
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNodes struct {
	Nodes []gexfNode `xml:"node"`
}

type gexfNode struct {
	ID        string        `xml:"id,attr"`
	Label     string        `xml:"label,attr"`
	AttValues gexfAttValues `xml:"attvalues"`
}

type gexfAttValues struct {
	AttValues []gexfAttValue `xml:"attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdges struct {
	Edges []gexfEdge `xml:"edge"`
}

type gexfEdge struct {
	ID        string        `xml:"id,attr"`
	Source    string        `xml:"source,attr"`
	Target    string        `xml:"target,attr"`
	Weight    string        `xml:"weight,attr,omitempty"`
	AttValues gexfAttValues `xml:"attvalues"`
}

// WriteGEXF writes the graph as GEXF 1.3 with nodes and edges in a stable
// order.
func WriteGEXF(w io.Writer, g *Graph) error {
	nodes := make([]gexfNode, 0, len(g.Nodes))
	for _, node := range g.sortedNodes() {
		nodes = append(nodes, gexfNode{
			ID:    node.ID,
			Label: node.Label,
			AttValues: gexfAttValues{AttValues: []gexfAttValue{
				{For: "0", Value: node.Kind},
				{For: "1", Value: strconv.FormatBool(node.Main)},
				{For: "2", Value: strconv.FormatBool(node.Signed)},
			}},
		})
	}

	edges := make([]gexfEdge, 0, len(g.Edges))
	for i, edge := range g.sortedEdges() {
		edges = append(edges, gexfEdge{
			ID:     fmt.Sprintf("e%d", i),
			Source: edge.Source,
			Target: edge.Target,
			Weight: strconv.Itoa(edge.Weight),
			AttValues: gexfAttValues{AttValues: []gexfAttValue{
				{For: "0", Value: edge.Type},
				{For: "1", Value: strconv.Itoa(edge.Weight)},
				{For: "2", Value: edge.RepoList()},
			}},
		})
	}

	doc := gexfFile{
		XMLNS:   "http://gexf.net/1.3",
		Version: "1.3",
		Meta: gexfMeta{
			LastModified: time.Now().Format("2006-01-02"),
			Creator:      "githunt",
			Description:  fmt.Sprintf("Identity graph for %s", g.Seed),
		},
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Mode:            "static",
			AttributeClasses: []gexfAttributeClass{
				{
					Class: "node",
					Attributes: []gexfAttribute{
						{ID: "0", Title: "kind", Type: "string"},
						{ID: "1", Title: "main", Type: "boolean"},
						{ID: "2", Title: "signed", Type: "boolean"},
					},
				},
				{
					Class: "edge",
					Attributes: []gexfAttribute{
						{ID: "0", Title: "type", Type: "string"},
						{ID: "1", Title: "commits", Type: "integer"},
						{ID: "2", Title: "repos", Type: "string"},
					},
				},
			},
			Nodes: gexfNodes{Nodes: nodes},
			Edges: gexfEdges{Edges: edges},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	return encoder.Encode(doc)
}
