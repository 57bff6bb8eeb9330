package valueobjects

// NodeKind is the closed set of workflow step types. A node's kind selects its
// icon on the canvas and its configuration field schema; it carries no
// execution semantics in this service.
type NodeKind string

const (
	// Builder primitives
	KindTrigger   NodeKind = "trigger"
	KindEmail     NodeKind = "email"
	KindExport    NodeKind = "export"
	KindDelay     NodeKind = "delay"
	KindCondition NodeKind = "condition"
	KindLoop      NodeKind = "loop"
	KindApproval  NodeKind = "approval"
	KindCode      NodeKind = "code"

	// Document and matching agents
	KindParser    NodeKind = "parser"
	KindValidator NodeKind = "validator"
	KindMatcher   NodeKind = "matcher"
	KindDuplicate NodeKind = "duplicate"
	KindException NodeKind = "exception"
	KindBilling   NodeKind = "billing"

	// Receivables/payables agents
	KindAllocator      NodeKind = "allocator"
	KindAging          NodeKind = "aging"
	KindRecon          NodeKind = "recon"
	KindVariance       NodeKind = "variance"
	KindERPSync        NodeKind = "erpsync"
	KindLogger         NodeKind = "logger"
	KindAPReporting    NodeKind = "apreporting"
	KindARReporting    NodeKind = "arreporting"
	KindReconReporting NodeKind = "reconreporting"
	KindAuditReporting NodeKind = "auditreporting"

	// Data intelligence agents
	KindOrchestrator NodeKind = "orchestrator"
	KindCodeAgent    NodeKind = "codeagent"
	KindVizAgent     NodeKind = "vizagent"
	KindSandbox      NodeKind = "sandbox"
	KindLiveCode     NodeKind = "livecode"
	KindInsight      NodeKind = "insight"
	KindDataGrid     NodeKind = "datagrid"
	KindGuardrails   NodeKind = "guardrails"
	KindMemory       NodeKind = "memory"
)

// DefaultKind is assigned when a payload carries no usable type information.
const DefaultKind = KindCode

var knownKinds = map[NodeKind]struct{}{
	KindTrigger: {}, KindEmail: {}, KindExport: {}, KindDelay: {},
	KindCondition: {}, KindLoop: {}, KindApproval: {}, KindCode: {},
	KindParser: {}, KindValidator: {}, KindMatcher: {}, KindDuplicate: {},
	KindException: {}, KindBilling: {},
	KindAllocator: {}, KindAging: {}, KindRecon: {}, KindVariance: {},
	KindERPSync: {}, KindLogger: {}, KindAPReporting: {}, KindARReporting: {},
	KindReconReporting: {}, KindAuditReporting: {},
	KindOrchestrator: {}, KindCodeAgent: {}, KindVizAgent: {}, KindSandbox: {},
	KindLiveCode: {}, KindInsight: {}, KindDataGrid: {}, KindGuardrails: {},
	KindMemory: {},
}

// IsValid reports whether the kind belongs to the known set
func (k NodeKind) IsValid() bool {
	_, ok := knownKinds[k]
	return ok
}

// String returns the string representation of the kind
func (k NodeKind) String() string {
	return string(k)
}

// KindFromString maps a raw type tag to a known kind, falling back to
// DefaultKind for unknown or empty input. Mapping never fails: a renderable
// node beats a rejected payload.
func KindFromString(raw string) NodeKind {
	k := NodeKind(raw)
	if k.IsValid() {
		return k
	}
	return DefaultKind
}

// AllKinds returns the full kind set in a stable order, for schema listings
func AllKinds() []NodeKind {
	return []NodeKind{
		KindTrigger, KindEmail, KindExport, KindDelay, KindCondition,
		KindLoop, KindApproval, KindCode,
		KindParser, KindValidator, KindMatcher, KindDuplicate,
		KindException, KindBilling,
		KindAllocator, KindAging, KindRecon, KindVariance, KindERPSync,
		KindLogger, KindAPReporting, KindARReporting, KindReconReporting,
		KindAuditReporting,
		KindOrchestrator, KindCodeAgent, KindVizAgent, KindSandbox,
		KindLiveCode, KindInsight, KindDataGrid, KindGuardrails, KindMemory,
	}
}
