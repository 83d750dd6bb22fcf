package service

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/scopeflow/scopeflow/internal/analyzer"
)

// CFGDocument is the on-disk description of one or more region-annotated
// control-flow graphs. Documents are YAML and conventionally named
// *.cfg.yaml.
type CFGDocument struct {
	Functions []CFGFunctionDoc `yaml:"functions" msgpack:"functions"`
}

// CFGFunctionDoc describes a single function CFG
type CFGFunctionDoc struct {
	Name    string         `yaml:"name" msgpack:"name"`
	Entry   string         `yaml:"entry" msgpack:"entry"`
	Regions []CFGRegionDoc `yaml:"regions" msgpack:"regions"`
	Nodes   []CFGNodeDoc   `yaml:"nodes" msgpack:"nodes"`
}

// CFGRegionDoc describes one region of the lexical region tree. An empty
// parent means the CFG root region. Try/catch regions name their protected
// sub-region and handler sub-regions by id.
type CFGRegionDoc struct {
	ID        string   `yaml:"id" msgpack:"id"`
	Kind      string   `yaml:"kind" msgpack:"kind"`
	Parent    string   `yaml:"parent,omitempty" msgpack:"parent"`
	Protected string   `yaml:"protected,omitempty" msgpack:"protected"`
	Handlers  []string `yaml:"handlers,omitempty" msgpack:"handlers"`
	Entry     string   `yaml:"entry,omitempty" msgpack:"entry"`
}

// CFGNodeDoc describes one CFG node and its outgoing edges. Successor
// lists keep their declaration order.
type CFGNodeDoc struct {
	ID          string   `yaml:"id" msgpack:"id"`
	Region      string   `yaml:"region,omitempty" msgpack:"region"`
	Statements  []string `yaml:"statements,omitempty" msgpack:"statements"`
	FallThrough string   `yaml:"fallthrough,omitempty" msgpack:"fallthrough"`
	CondTrue    string   `yaml:"cond_true,omitempty" msgpack:"cond_true"`
	CondFalse   string   `yaml:"cond_false,omitempty" msgpack:"cond_false"`
	Abnormal    []string `yaml:"abnormal,omitempty" msgpack:"abnormal"`
}

const (
	regionKindScope    = "scope"
	regionKindTryCatch = "trycatch"
)

// ParseCFGDocument parses a YAML CFG document
func ParseCFGDocument(data []byte) (*CFGDocument, error) {
	var doc CFGDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Functions) == 0 {
		return nil, fmt.Errorf("document declares no functions")
	}
	return &doc, nil
}

// BuildCFG materializes an analyzer CFG from a function document,
// validating the structural invariants the reconstruction core relies on.
func BuildCFG(fn CFGFunctionDoc) (*analyzer.CFG, error) {
	if fn.Name == "" {
		return nil, fmt.Errorf("function has no name")
	}
	cfg := analyzer.NewCFG(fn.Name)

	regions, err := buildRegions(cfg, fn)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}

	nodes, err := buildNodes(cfg, fn, regions)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}

	if err := connectNodes(cfg, fn, nodes); err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}

	if err := resolveEntries(cfg, fn, regions, nodes); err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}

	return cfg, nil
}

// buildRegions creates the region tree and wires try/catch sub-regions
func buildRegions(cfg *analyzer.CFG, fn CFGFunctionDoc) (map[string]*analyzer.Region, error) {
	regions := make(map[string]*analyzer.Region, len(fn.Regions))

	for _, rd := range fn.Regions {
		if rd.ID == "" {
			return nil, fmt.Errorf("region with empty id")
		}
		if _, exists := regions[rd.ID]; exists {
			return nil, fmt.Errorf("duplicate region id %s", rd.ID)
		}
		switch rd.Kind {
		case regionKindScope, "":
			regions[rd.ID] = &analyzer.Region{Kind: analyzer.RegionScope}
		case regionKindTryCatch:
			regions[rd.ID] = &analyzer.Region{Kind: analyzer.RegionTryCatch}
		default:
			return nil, fmt.Errorf("region %s: unknown kind %q", rd.ID, rd.Kind)
		}
	}

	for _, rd := range fn.Regions {
		region := regions[rd.ID]

		if rd.Parent == "" {
			region.Parent = cfg.RootRegion
		} else {
			parent, ok := regions[rd.Parent]
			if !ok {
				return nil, fmt.Errorf("region %s: unknown parent %s", rd.ID, rd.Parent)
			}
			region.Parent = parent
		}

		if region.Kind == analyzer.RegionTryCatch {
			if rd.Protected == "" {
				return nil, fmt.Errorf("try/catch region %s has no protected sub-region", rd.ID)
			}
			protected, ok := regions[rd.Protected]
			if !ok {
				return nil, fmt.Errorf("region %s: unknown protected sub-region %s", rd.ID, rd.Protected)
			}
			region.Protected = protected
			for _, hid := range rd.Handlers {
				handler, ok := regions[hid]
				if !ok {
					return nil, fmt.Errorf("region %s: unknown handler sub-region %s", rd.ID, hid)
				}
				region.Handlers = append(region.Handlers, handler)
			}
		} else if rd.Protected != "" || len(rd.Handlers) > 0 {
			return nil, fmt.Errorf("region %s: scope regions cannot declare protected or handler sub-regions", rd.ID)
		}
	}

	// Children of a try/catch region must be exactly its sub-regions.
	for _, rd := range fn.Regions {
		region := regions[rd.ID]
		parent := region.Parent
		if parent == nil || parent.Kind != analyzer.RegionTryCatch {
			continue
		}
		if region != parent.Protected && !region.IsHandlerOf(parent) {
			return nil, fmt.Errorf("region %s: parent is a try/catch region but %s is neither its protected sub-region nor a listed handler", rd.ID, rd.ID)
		}
	}

	return regions, nil
}

// buildNodes creates the CFG nodes and assigns their regions
func buildNodes(cfg *analyzer.CFG, fn CFGFunctionDoc, regions map[string]*analyzer.Region) (map[string]*analyzer.Node, error) {
	if len(fn.Nodes) == 0 {
		return nil, fmt.Errorf("function declares no nodes")
	}

	nodes := make(map[string]*analyzer.Node, len(fn.Nodes))
	for _, nd := range fn.Nodes {
		if nd.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		if _, exists := nodes[nd.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %s", nd.ID)
		}

		node := analyzer.NewNode(nd.ID)
		node.Statements = append(node.Statements, nd.Statements...)

		if nd.Region == "" {
			node.Region = cfg.RootRegion
		} else {
			region, ok := regions[nd.Region]
			if !ok {
				return nil, fmt.Errorf("node %s: unknown region %s", nd.ID, nd.Region)
			}
			if region.Kind == analyzer.RegionTryCatch {
				return nil, fmt.Errorf("node %s: nodes cannot sit in a try/catch region directly; use its protected or handler sub-region", nd.ID)
			}
			node.Region = region
		}

		cfg.AddNode(node)
		nodes[nd.ID] = node
	}

	return nodes, nil
}

// connectNodes adds the declared edges in declaration order
func connectNodes(cfg *analyzer.CFG, fn CFGFunctionDoc, nodes map[string]*analyzer.Node) error {
	resolve := func(from, id string) (*analyzer.Node, error) {
		to, ok := nodes[id]
		if !ok {
			return nil, fmt.Errorf("node %s: unknown successor %s", from, id)
		}
		return to, nil
	}

	for _, nd := range fn.Nodes {
		node := nodes[nd.ID]

		if nd.FallThrough != "" {
			to, err := resolve(nd.ID, nd.FallThrough)
			if err != nil {
				return err
			}
			cfg.ConnectNodes(node, to, analyzer.EdgeFallThrough)
		}
		if nd.CondTrue != "" {
			to, err := resolve(nd.ID, nd.CondTrue)
			if err != nil {
				return err
			}
			cfg.ConnectNodes(node, to, analyzer.EdgeCondTrue)
		}
		if nd.CondFalse != "" {
			to, err := resolve(nd.ID, nd.CondFalse)
			if err != nil {
				return err
			}
			cfg.ConnectNodes(node, to, analyzer.EdgeCondFalse)
		}
		for _, id := range nd.Abnormal {
			to, err := resolve(nd.ID, id)
			if err != nil {
				return err
			}
			cfg.ConnectNodes(node, to, analyzer.EdgeException)
		}
	}

	return nil
}

// resolveEntries fixes the CFG entry node and the region entry points.
// Region entries default to the first declared node of the region.
func resolveEntries(cfg *analyzer.CFG, fn CFGFunctionDoc, regions map[string]*analyzer.Region, nodes map[string]*analyzer.Node) error {
	entryID := fn.Entry
	if entryID == "" {
		entryID = fn.Nodes[0].ID
	}
	entry, ok := nodes[entryID]
	if !ok {
		return fmt.Errorf("unknown entry node %s", entryID)
	}
	cfg.Entry = entry

	for _, rd := range fn.Regions {
		region := regions[rd.ID]
		if rd.Entry != "" {
			n, ok := nodes[rd.Entry]
			if !ok {
				return fmt.Errorf("region %s: unknown entry node %s", rd.ID, rd.Entry)
			}
			region.Entry = n
		}
	}
	for _, nd := range fn.Nodes {
		node := nodes[nd.ID]
		if node.Region != nil && node.Region.Entry == nil {
			node.Region.Entry = node
		}
	}

	return nil
}
