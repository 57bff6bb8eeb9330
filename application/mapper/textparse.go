package mapper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
)

var (
	dayPattern    = regexp.MustCompile(`(?i)(\d+)\s*days?`)
	hourPattern   = regexp.MustCompile(`(?i)(\d+)\s*hours?`)
	minutePattern = regexp.MustCompile(`(?i)(\d+)\s*minutes?`)
)

const (
	parseColumnX  = 250.0
	parseOriginY  = 100.0
	parseRowPitch = 120.0
)

// ParseWorkflowText builds a workflow sketch from a plain-language prompt.
// Recognized phrases each contribute one step (delay, email, export,
// condition), a trigger always leads, and the steps are chained in order.
// Used when no report template matches the prompt.
func ParseWorkflowText(text string) ([]*entities.Node, []aggregates.Edge) {
	lower := strings.ToLower(text)
	base := time.Now().UnixNano()
	y := parseOriginY

	nodes := make([]*entities.Node, 0, 5)

	addNode := func(suffix, label string, kind valueobjects.NodeKind, cfg map[string]interface{}) {
		id := fmt.Sprintf("node-%d%s", base, suffix)
		nodeID, err := valueobjects.NewNodeIDFromString(id)
		if err != nil {
			return
		}
		node, err := entities.ReconstructNode(
			nodeID, kind, label, "",
			valueobjects.NewPosition(parseColumnX, y),
			cfg,
		)
		if err != nil {
			return
		}
		nodes = append(nodes, node)
		y += parseRowPitch
	}

	triggerType := "manual"
	if strings.Contains(lower, "scheduled") {
		triggerType = "scheduled"
	}
	addNode("", "Trigger", valueobjects.KindTrigger, map[string]interface{}{
		"name":        "Start Workflow",
		"triggerType": triggerType,
	})

	if strings.Contains(lower, "wait") || strings.Contains(lower, "delay") {
		amount, unit := parseDelay(text)
		addNode("-1", "Delay", valueobjects.KindDelay, map[string]interface{}{
			"name":        fmt.Sprintf("Wait %d %s", amount, unit),
			"delayAmount": amount,
			"delayUnit":   unit,
		})
	}

	if strings.Contains(lower, "email") || strings.Contains(lower, "send") {
		subject := "Notification"
		switch {
		case strings.Contains(lower, "welcome"):
			subject = "Welcome!"
		case strings.Contains(lower, "reminder"):
			subject = "Reminder"
		}
		addNode("-2", "Send Email", valueobjects.KindEmail, map[string]interface{}{
			"name":         "Send Email",
			"emailSubject": subject,
		})
	}

	if strings.Contains(lower, "export") || strings.Contains(lower, "csv") ||
		strings.Contains(lower, "json") || strings.Contains(lower, "pdf") {
		format := "CSV"
		switch {
		case strings.Contains(lower, "json"):
			format = "JSON"
		case strings.Contains(lower, "pdf"):
			format = "PDF"
		}
		addNode("-3", "Export Data", valueobjects.KindExport, map[string]interface{}{
			"name":         fmt.Sprintf("Export as %s", format),
			"exportFormat": format,
		})
	}

	if strings.Contains(lower, "if") || strings.Contains(lower, "condition") {
		addNode("-4", "If/Else", valueobjects.KindCondition, map[string]interface{}{
			"name": "Check Condition",
		})
	}

	now := time.Now()
	edges := make([]aggregates.Edge, 0, len(nodes))
	for i := 0; i < len(nodes)-1; i++ {
		edges = append(edges, aggregates.Edge{
			ID:        fmt.Sprintf("edge-%d", i),
			SourceID:  nodes[i].ID(),
			TargetID:  nodes[i+1].ID(),
			CreatedAt: now,
		})
	}

	return nodes, edges
}

// parseDelay extracts "{n} days|hours|minutes" from the prompt, preferring
// the coarsest unit mentioned. Defaults to one day.
func parseDelay(text string) (int, string) {
	for _, probe := range []struct {
		re   *regexp.Regexp
		unit string
	}{
		{dayPattern, "days"},
		{hourPattern, "hours"},
		{minutePattern, "minutes"},
	} {
		if m := probe.re.FindStringSubmatch(text); m != nil {
			if amount, err := strconv.Atoi(m[1]); err == nil {
				return amount, probe.unit
			}
		}
	}
	return 1, "days"
}
