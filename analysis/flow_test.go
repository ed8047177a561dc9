package analysis

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

const flowFixture = `#FNAMN "Acme AB"
#RAR 0 20230101 20231231
#KONTO 1930 "Foretagskonto"
#KONTO 2440 "Leverantorsskulder"
#KONTO 3010 "Forsaljning"
#KONTO 4010 "Inkop varor"
#KONTO 7010 "Loner"
#VER A 1 20230315 "Forsaljning"
{
#TRANS 1930 {} 1000.00
#TRANS 3010 {} -1000.00
}
#VER A 2 20230410 "Inkop"
{
#TRANS 4010 {} 400.00
#TRANS 2440 {} -400.00
}
#VER A 3 20230425 "Lon"
{
#TRANS 7010 {} 250.00
#TRANS 1930 {} -250.00
}
`

func nodeIDs(g *FlowGraph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func findEdge(g *FlowGraph, source, target string) (FlowEdge, bool) {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return FlowEdge{}, false
}

func TestBuildFlowGraph(t *testing.T) {
	doc := buildDoc(t, flowFixture)
	g := BuildFlowGraph(context.Background(), doc, doc.CurrentFiscalYear())

	// Sources, hub, uses, then inactive balance-sheet categories.
	assert.Equal(t, []string{
		"Revenue",
		ResultNode,
		"Goods and materials",
		"Personnel",
		"Current assets",
		"Current liabilities",
	}, nodeIDs(g))

	edge, ok := findEdge(g, "Revenue", ResultNode)
	assert.True(t, ok)
	assert.True(t, edge.Weight.Equal(decimal.NewFromInt(1000)))

	edge, ok = findEdge(g, ResultNode, "Goods and materials")
	assert.True(t, ok)
	assert.True(t, edge.Weight.Equal(decimal.NewFromInt(400)))

	edge, ok = findEdge(g, ResultNode, "Personnel")
	assert.True(t, ok)
	assert.True(t, edge.Weight.Equal(decimal.NewFromInt(250)))
}

func TestBuildFlowGraph_ConservationAtResultHub(t *testing.T) {
	doc := buildDoc(t, flowFixture)
	fy := doc.CurrentFiscalYear()
	g := BuildFlowGraph(context.Background(), doc, fy)

	// Inbound minus outbound at the hub is the period's net result.
	assert.True(t, g.NetFlow(ResultNode).Equal(doc.NetResult(fy)), "net flow %s, net result %s", g.NetFlow(ResultNode), doc.NetResult(fy))
	assert.True(t, g.NetFlow(ResultNode).Equal(decimal.NewFromInt(350)))
}

func TestBuildFlowGraph_BalanceSheetNodesCarryNoHubEdges(t *testing.T) {
	doc := buildDoc(t, flowFixture)
	g := BuildFlowGraph(context.Background(), doc, doc.CurrentFiscalYear())

	for _, label := range []string{"Current assets", "Current liabilities"} {
		assert.True(t, g.NetFlow(label).IsZero(), "unexpected edges on %s", label)
	}
}

func TestBuildFlowGraph_OtherCatchAll(t *testing.T) {
	doc := buildDoc(t, flowFixture)
	grouping := Grouping{Rules: []GroupRule{{Prefix: "3", Label: "Revenue"}}}
	g := BuildFlowGraph(context.Background(), doc, doc.CurrentFiscalYear(), WithGrouping(grouping))

	// Expense accounts no rule claims still flow, through "Other".
	edge, ok := findEdge(g, ResultNode, OtherNode)
	assert.True(t, ok)
	assert.True(t, edge.Weight.Equal(decimal.NewFromInt(650)))
}

func TestBuildFlowGraph_ThresholdDropsSmallEdges(t *testing.T) {
	doc := buildDoc(t, flowFixture)
	g := BuildFlowGraph(context.Background(), doc, doc.CurrentFiscalYear(), WithThreshold(decimal.NewFromInt(500)))

	_, ok := findEdge(g, "Revenue", ResultNode)
	assert.True(t, ok)
	_, ok = findEdge(g, ResultNode, "Goods and materials")
	assert.False(t, ok)
	_, ok = findEdge(g, ResultNode, "Personnel")
	assert.False(t, ok)
}

func TestBuildFlowGraph_EmptyLedger(t *testing.T) {
	doc := buildDoc(t, `#FNAMN "Acme AB"
#RAR 0 20230101 20231231
#KONTO 1930 "Foretagskonto"
`)
	g := BuildFlowGraph(context.Background(), doc, doc.CurrentFiscalYear())

	assert.Equal(t, 0, len(g.Edges))
	assert.Equal(t, []string{ResultNode, "Current assets"}, nodeIDs(g))
}

func TestBuildFlowGraph_UnclassifiableAccountsStayOffResultSide(t *testing.T) {
	// Account 123 is too short to classify; posting against it must not
	// skew the hub, which only balances income-statement activity.
	doc := buildDoc(t, `#FNAMN "Acme AB"
#RAR 0 20230101 20231231
#KONTO 123 "Ovrigt"
#KONTO 3010 "Forsaljning"
#VER A 1 20230315 "Udda kontering"
{
#TRANS 123 {} 500.00
#TRANS 3010 {} -500.00
}
`)
	fy := doc.CurrentFiscalYear()
	g := BuildFlowGraph(context.Background(), doc, fy)

	assert.True(t, g.NetFlow(ResultNode).Equal(doc.NetResult(fy)), "net flow %s, net result %s", g.NetFlow(ResultNode), doc.NetResult(fy))
	assert.True(t, g.NetFlow(ResultNode).Equal(decimal.NewFromInt(500)))

	// The account still maps to a node, just not one trading with the hub.
	assert.True(t, slices.Contains(nodeIDs(g), UnclassifiedNode))
	assert.True(t, g.NetFlow(UnclassifiedNode).IsZero())

	_, ok := findEdge(g, UnclassifiedNode, ResultNode)
	assert.False(t, ok)
	_, ok = findEdge(g, ResultNode, UnclassifiedNode)
	assert.False(t, ok)
}

func TestBuildFlowGraph_CorrectionLinesExcluded(t *testing.T) {
	doc := buildDoc(t, `#FNAMN "Acme AB"
#RAR 0 20230101 20231231
#KONTO 1930 "Foretagskonto"
#KONTO 3010 "Forsaljning"
#VER A 1 20230315 "Rattad"
{
#TRANS 1930 {} 1000.00
#TRANS 3010 {} -1000.00
#RTRANS 3010 {} -500.00
}
`)
	g := BuildFlowGraph(context.Background(), doc, doc.CurrentFiscalYear())

	edge, ok := findEdge(g, "Revenue", ResultNode)
	assert.True(t, ok)
	assert.True(t, edge.Weight.Equal(decimal.NewFromInt(1000)))
}
