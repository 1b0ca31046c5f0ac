package services

import (
	"fmt"

	"slidecanvas/domain/core/entities"
	pkgerrors "slidecanvas/pkg/errors"
)

// Scoring weights for engine recommendation
const (
	scoreValid     = 10
	scoreOverview  = 2
	scoreFragments = 2
	scoreCustomCSS = 1
	scoreFlowMatch = 5
)

const issueUnsupported = "unsupported_type"

// Recommendation reasons
const (
	ReasonConnectionAware = "connection-aware"
	ReasonNodeBased       = "node-based"
)

// EngineFeatures are the optional capabilities an engine declares
type EngineFeatures struct {
	Overview  bool `json:"overview" yaml:"overview"`
	Fragments bool `json:"fragments" yaml:"fragments"`
	CustomCSS bool `json:"custom_css" yaml:"custom_css"`
	Spatial   bool `json:"spatial" yaml:"spatial"`
	Linear    bool `json:"linear" yaml:"linear"`
}

// EngineCapabilities is the fixed descriptor of a presentation engine
type EngineCapabilities struct {
	ID             string              `json:"id" yaml:"id"`
	Name           string              `json:"name" yaml:"name"`
	SupportedTypes []entities.NodeType `json:"supported_types" yaml:"supported_types"`
	Features       EngineFeatures      `json:"features" yaml:"features"`
}

// Supports reports whether the engine can render the node type.
func (c EngineCapabilities) Supports(t entities.NodeType) bool {
	for _, s := range c.SupportedTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ValidationIssue is an advisory problem rendering one node with an engine
type ValidationIssue struct {
	NodeID  string `json:"node_id"`
	Issue   string `json:"issue"`
	Message string `json:"message"`
}

// ValidateNodes lists every node the engine cannot render.
func ValidateNodes(caps EngineCapabilities, nodes []*entities.Node) []ValidationIssue {
	var issues []ValidationIssue
	for _, n := range nodes {
		if caps.Supports(n.Type()) {
			continue
		}
		issues = append(issues, ValidationIssue{
			NodeID:  n.ID().String(),
			Issue:   issueUnsupported,
			Message: fmt.Sprintf("%s does not support %s nodes", caps.Name, n.Type()),
		})
	}
	return issues
}

// EngineScore is the breakdown for one engine
type EngineScore struct {
	EngineID string `json:"engine_id"`
	Score    int    `json:"score"`
	Valid    bool   `json:"valid"`
	Issues   int    `json:"issues"`
}

// Recommendation is the outcome of engine selection
type Recommendation struct {
	EngineID     string        `json:"engine_id"`
	Score        int           `json:"score"`
	Alternatives []string      `json:"alternatives"`
	Reason       string        `json:"reason"`
	Flow         FlowAnalysis  `json:"flow"`
	Scores       []EngineScore `json:"scores"`
}

// EngineSelector scores registered engines against a node graph
type EngineSelector struct {
	engines  []EngineCapabilities
	analyzer *FlowAnalyzer
}

// NewEngineSelector creates a selector with no engines registered
func NewEngineSelector(analyzer *FlowAnalyzer) *EngineSelector {
	if analyzer == nil {
		analyzer = NewFlowAnalyzer()
	}
	return &EngineSelector{analyzer: analyzer}
}

// Register adds an engine. Registration order breaks score ties.
func (s *EngineSelector) Register(caps EngineCapabilities) error {
	if caps.ID == "" {
		return pkgerrors.NewValidationError("engine ID is required")
	}
	if _, ok := s.Engine(caps.ID); ok {
		return pkgerrors.NewConflictError(fmt.Sprintf("engine %s already registered", caps.ID)).
			WithCode(pkgerrors.CodeDuplicateID)
	}
	s.engines = append(s.engines, caps)
	return nil
}

// Engines returns the registered engines in registration order.
func (s *EngineSelector) Engines() []EngineCapabilities {
	return append([]EngineCapabilities(nil), s.engines...)
}

// Engine looks up a registered engine by id.
func (s *EngineSelector) Engine(id string) (EngineCapabilities, bool) {
	for _, e := range s.engines {
		if e.ID == id {
			return e, true
		}
	}
	return EngineCapabilities{}, false
}

// Score rates one engine for the nodes and flow.
func (s *EngineSelector) Score(caps EngineCapabilities, nodes []*entities.Node, flow FlowAnalysis) EngineScore {
	issues := ValidateNodes(caps, nodes)
	score := EngineScore{EngineID: caps.ID, Valid: len(issues) == 0, Issues: len(issues)}

	if score.Valid {
		score.Score += scoreValid
	} else {
		score.Score -= len(issues)
	}

	if caps.Features.Overview {
		score.Score += scoreOverview
	}
	if caps.Features.Fragments {
		score.Score += scoreFragments
	}
	if caps.Features.CustomCSS {
		score.Score += scoreCustomCSS
	}

	present := make(map[entities.NodeType]struct{})
	for _, n := range nodes {
		present[n.Type()] = struct{}{}
	}
	for t := range present {
		if caps.Supports(t) {
			score.Score++
		}
	}

	switch flow.Style {
	case FlowBranching, FlowNetwork:
		if caps.Features.Spatial {
			score.Score += scoreFlowMatch
		}
	case FlowLinear:
		if caps.Features.Linear {
			score.Score += scoreFlowMatch
		}
	}
	return score
}

// Recommend picks the highest scoring engine. Ties go to the engine
// registered first.
func (s *EngineSelector) Recommend(nodes []*entities.Node, connections []*entities.Connection) (Recommendation, error) {
	if len(s.engines) == 0 {
		return Recommendation{}, pkgerrors.NewValidationError("no presentation engines registered").
			WithCode(pkgerrors.CodeUnknownEngine)
	}

	flow := s.analyzer.AnalyzeConnectionFlow(nodes, connections)
	rec := Recommendation{
		Reason:       ReasonNodeBased,
		Flow:         flow,
		Alternatives: []string{},
		Scores:       make([]EngineScore, 0, len(s.engines)),
	}
	if len(connections) > 0 {
		rec.Reason = ReasonConnectionAware
	}

	best := -1
	for i, e := range s.engines {
		sc := s.Score(e, nodes, flow)
		rec.Scores = append(rec.Scores, sc)
		if best < 0 || sc.Score > rec.Scores[best].Score {
			best = i
		}
	}

	rec.EngineID = s.engines[best].ID
	rec.Score = rec.Scores[best].Score
	for i, e := range s.engines {
		if i != best {
			rec.Alternatives = append(rec.Alternatives, e.ID)
		}
	}
	return rec, nil
}
