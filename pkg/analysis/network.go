package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kerbaras/fengshen/pkg/data"
)

var (
	NodeHeader = []string{"Id", "Label"}
	EdgeHeader = []string{"Source", "Target", "Weight"}
)

// Edge links two names that share Weight sentences. Source sorts before Target.
type Edge struct {
	Source string
	Target string
	Weight int
}

// Network is a name co-occurrence graph in the shape Gephi imports.
type Network struct {
	Nodes []string
	Edges []Edge
}

// LoadWhitelist reads names from the first column of a CSV table. The first
// row is a header. Blank and repeated names are dropped.
func LoadWhitelist(r io.Reader) ([]string, error) {
	cr := csv.NewReader(data.NewBOMReader(r))
	cr.FieldsPerRecord = -1

	var names []string
	seen := make(map[string]struct{})
	for line := 0; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read whitelist: %w", err)
		}
		if line == 0 || len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.New("whitelist has no names")
	}
	return names, nil
}

// BuildNetwork counts, for every pair of names, the sentences that mention
// both. Edges are ordered by weight, heaviest first, then by name.
func BuildNetwork(names, sentences []string) *Network {
	weights := make(map[[2]string]int)
	for _, sentence := range sentences {
		var present []string
		for _, name := range names {
			if strings.Contains(sentence, name) {
				present = append(present, name)
			}
		}
		if len(present) < 2 {
			continue
		}
		sort.Strings(present)
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				weights[[2]string{present[i], present[j]}]++
			}
		}
	}

	edges := make([]Edge, 0, len(weights))
	for pair, w := range weights {
		edges = append(edges, Edge{Source: pair[0], Target: pair[1], Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})

	return &Network{Nodes: append([]string(nil), names...), Edges: edges}
}

func (n *Network) NodeRecords() [][]string {
	records := make([][]string, 0, len(n.Nodes))
	for _, name := range n.Nodes {
		records = append(records, []string{name, name})
	}
	return records
}

func (n *Network) EdgeRecords() [][]string {
	records := make([][]string, 0, len(n.Edges))
	for _, e := range n.Edges {
		records = append(records, []string{e.Source, e.Target, strconv.Itoa(e.Weight)})
	}
	return records
}

// Write stores the node and edge tables for Gephi.
func (n *Network) Write(nodesPath, edgesPath string) error {
	if err := data.WriteTable(nodesPath, NodeHeader, n.NodeRecords()); err != nil {
		return fmt.Errorf("failed to write nodes: %w", err)
	}
	if err := data.WriteTable(edgesPath, EdgeHeader, n.EdgeRecords()); err != nil {
		return fmt.Errorf("failed to write edges: %w", err)
	}
	return nil
}
