// Package graph builds the identity graph of an account: its aliases, its
// emails and which alias committed with which email.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnomegl/githunt/internal/identity"
	"github.com/gnomegl/githunt/internal/models"
)

const (
	KindAccount = "account"
	KindAlias   = "alias"
	KindEmail   = "email"

	EdgeUses     = "uses"
	EdgeAuthored = "authored_with"
)

type Node struct {
	ID     string
	Label  string
	Kind   string
	Main   bool
	Signed bool
}

type Edge struct {
	Source string
	Target string
	Type   string
	Weight int
	Repos  map[string]struct{}
}

func edgeKey(source, target, edgeType string) string {
	return fmt.Sprintf("%s|%s|%s", source, target, edgeType)
}

type Graph struct {
	Seed  string
	Nodes map[string]*Node
	Edges map[string]*Edge
}

func NewGraph(seed string) *Graph {
	return &Graph{
		Seed:  seed,
		Nodes: make(map[string]*Node),
		Edges: make(map[string]*Edge),
	}
}

func aliasID(name string) string  { return "alias:" + name }
func emailID(email string) string { return "email:" + email }
func accountID(login string) string {
	return "account:" + login
}

// Build links the account to every alias, and every alias to each email it
// committed with across the attributed commits.
func Build(id *models.Identity, attributed []identity.Attribution) *Graph {
	g := NewGraph(id.Login)
	g.AddNode(&Node{ID: accountID(id.Login), Label: id.Login, Kind: KindAccount})

	for _, a := range id.Aliases {
		g.AddNode(&Node{ID: aliasID(a.Name), Label: a.Name, Kind: KindAlias, Main: a.IsMain, Signed: a.IsSigned})
		g.AddEdge(accountID(id.Login), aliasID(a.Name), EdgeUses, "")
	}
	for _, e := range id.Emails {
		g.AddNode(&Node{ID: emailID(e), Label: e, Kind: KindEmail})
	}

	for _, at := range attributed {
		name, email := at.Commit.AuthorName, at.Commit.AuthorEmail
		g.AddNode(&Node{ID: aliasID(name), Label: name, Kind: KindAlias})
		g.AddNode(&Node{ID: emailID(email), Label: email, Kind: KindEmail})
		g.AddEdge(aliasID(name), emailID(email), EdgeAuthored, at.Repo)
	}
	return g
}

func (g *Graph) AddNode(node *Node) bool {
	if _, exists := g.Nodes[node.ID]; exists {
		return false
	}
	g.Nodes[node.ID] = node
	return true
}

func (g *Graph) HasNode(id string) bool {
	_, exists := g.Nodes[id]
	return exists
}

func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// AddEdge adds an edge or bumps the weight of an existing one.
func (g *Graph) AddEdge(source, target, edgeType, repo string) {
	key := edgeKey(source, target, edgeType)
	e, ok := g.Edges[key]
	if !ok {
		e = &Edge{Source: source, Target: target, Type: edgeType, Repos: make(map[string]struct{})}
		g.Edges[key] = e
	}
	e.Weight++
	if repo != "" {
		e.Repos[repo] = struct{}{}
	}
}

func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// RepoList returns the repositories an edge was seen in, sorted and comma
// separated.
func (e *Edge) RepoList() string {
	repos := make([]string, 0, len(e.Repos))
	for r := range e.Repos {
		repos = append(repos, r)
	}
	sort.Strings(repos)
	return strings.Join(repos, ",")
}

func (g *Graph) sortedNodes() []*Node {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (g *Graph) sortedEdges() []*Edge {
	edges := make([]*Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edgeKey(edges[i].Source, edges[i].Target, edges[i].Type) <
			edgeKey(edges[j].Source, edges[j].Target, edges[j].Type)
	})
	return edges
}
