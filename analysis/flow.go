package analysis

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/telemetry"
)

// ResultNode is the hub all income-statement flow converges on. Inbound
// weight minus outbound weight equals the period's net result.
const ResultNode = "Result"

// OtherNode is the catch-all category for income-statement accounts no
// grouping rule claims. Routing them here instead of dropping them keeps
// total flow conserved.
const OtherNode = "Other"

// UnclassifiedNode holds accounts whose code yields no classification at
// all (too short or non-numeric). They sit outside the income statement,
// so like balance-sheet categories they get a node but never trade edges
// with the Result hub.
const UnclassifiedNode = "Unclassified"

// FlowNode is one aggregate category in the Sankey graph.
type FlowNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FlowEdge is a directed, weighted flow between two categories.
// Weight is always positive; direction carries the sign.
type FlowEdge struct {
	Source string          `json:"source_id"`
	Target string          `json:"target_id"`
	Weight decimal.Decimal `json:"weight"`
}

// FlowGraph is the Sankey-ready product: ordered nodes and edges, built
// fresh per request and never mutated afterwards.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// FlowOption configures the flow graph builder.
type FlowOption func(*flowConfig)

type flowConfig struct {
	grouping  Grouping
	threshold decimal.Decimal
}

// WithGrouping replaces the default BAS grouping rules.
func WithGrouping(g Grouping) FlowOption {
	return func(c *flowConfig) { c.grouping = g }
}

// WithThreshold sets the materiality threshold below which edges are
// dropped to keep the diagram legible. Default 0.01.
func WithThreshold(threshold decimal.Decimal) FlowOption {
	return func(c *flowConfig) { c.threshold = threshold }
}

// balance-sheet categories appear as nodes so every declared account maps
// somewhere, but only income-statement activity produces Result edges.
var balanceSheetLabels = map[document.Class]string{
	document.ClassFixedAsset:          "Fixed assets",
	document.ClassCurrentAsset:        "Current assets",
	document.ClassEquity:              "Equity",
	document.ClassNonCurrentLiability: "Non-current liabilities",
	document.ClassCurrentLiability:    "Current liabilities",
}

// BuildFlowGraph reduces a fiscal year's ledger activity to a bounded set
// of category nodes and net flow edges:
//
//  1. Accounts group into categories: income-statement accounts by the
//     grouping rules (catch-all "Other"), balance-sheet accounts by class.
//  2. Each verification's regular lines accumulate into the net amount of
//     the category they touch.
//  3. Categories with non-zero net exchange an edge with the Result hub:
//     net credit flows into Result (source of funds), net debit flows out
//     of it (use of funds). Edges below the materiality threshold drop.
func BuildFlowGraph(ctx context.Context, doc *document.Document, fy document.FiscalYear, opts ...FlowOption) *FlowGraph {
	timer := telemetry.StartTimer(ctx, "analysis.flow")
	defer timer.End()

	cfg := flowConfig{
		grouping:  DefaultGrouping(),
		threshold: decimal.NewFromFloat(0.01),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Category per account code. Every declared account lands in exactly
	// one category.
	categories := make(map[string]string, len(doc.Accounts))
	isResultSide := make(map[string]bool)
	for code, acc := range doc.Accounts {
		if label, ok := balanceSheetLabels[acc.Class]; ok {
			categories[code] = label
			continue
		}
		// Unclassifiable codes are not income-statement activity; keeping
		// them off the result side matches NetResult, which skips them too.
		if acc.Class == document.ClassUnknown {
			categories[code] = UnclassifiedNode
			continue
		}
		label, ok := cfg.grouping.Label(code)
		if !ok {
			label = OtherNode
		}
		categories[code] = label
		isResultSide[label] = true
	}

	// Net signed amount per income-statement category over the period.
	nets := make(map[string]decimal.Decimal)
	for _, v := range doc.VerificationsIn(fy) {
		for _, line := range v.Lines {
			if line.Kind != document.LineNormal {
				continue
			}
			label, ok := categories[line.Account]
			if !ok || !isResultSide[label] {
				continue
			}
			nets[label] = nets[label].Add(line.Amount)
		}
	}

	graph := &FlowGraph{}

	addNode := func(label string) {
		graph.Nodes = append(graph.Nodes, FlowNode{ID: label, Label: label})
	}

	// Deterministic node order: sources, the hub, uses, then the
	// balance-sheet categories that exist in this chart of accounts.
	var sources, uses []string
	for label, net := range nets {
		if net.IsNegative() {
			sources = append(sources, label)
		} else if net.IsPositive() {
			uses = append(uses, label)
		}
	}
	slices.Sort(sources)
	slices.Sort(uses)

	for _, label := range sources {
		addNode(label)
	}
	addNode(ResultNode)
	for _, label := range uses {
		addNode(label)
	}

	seen := make(map[string]bool, len(nets))
	for _, label := range sources {
		seen[label] = true
	}
	for _, label := range uses {
		seen[label] = true
	}
	var rest []string
	for code := range categories {
		label := categories[code]
		if !seen[label] {
			seen[label] = true
			rest = append(rest, label)
		}
	}
	slices.Sort(rest)
	for _, label := range rest {
		addNode(label)
	}

	// Edges around the Result hub.
	for _, label := range sources {
		weight := nets[label].Neg()
		if weight.LessThan(cfg.threshold) {
			continue
		}
		graph.Edges = append(graph.Edges, FlowEdge{Source: label, Target: ResultNode, Weight: weight})
	}
	for _, label := range uses {
		weight := nets[label]
		if weight.LessThan(cfg.threshold) {
			continue
		}
		graph.Edges = append(graph.Edges, FlowEdge{Source: ResultNode, Target: label, Weight: weight})
	}

	return graph
}

// NetFlow returns inbound minus outbound weight for a node, the quantity
// conserved at the Result hub.
func (g *FlowGraph) NetFlow(nodeID string) decimal.Decimal {
	net := decimal.Zero
	for _, e := range g.Edges {
		if e.Target == nodeID {
			net = net.Add(e.Weight)
		}
		if e.Source == nodeID {
			net = net.Sub(e.Weight)
		}
	}
	return net
}
