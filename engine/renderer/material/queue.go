package material

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RenderQueue is the rendering intent of a material. It decides which bucket a surface is
// submitted in. The declaration order is not the submission order; that comes from
// configuration.
type RenderQueue uint8

const (
	QueueOpaque RenderQueue = iota
	QueueSkybox
	QueueTransparent
	QueueUI

	queueCount
)

// QueueCount is the number of render queue kinds.
const QueueCount = int(queueCount)

// DefaultQueueOrder is the submission order used when none is configured.
var DefaultQueueOrder = []RenderQueue{QueueOpaque, QueueSkybox, QueueTransparent, QueueUI}

var queueNames = [...]string{
	QueueOpaque:      "opaque",
	QueueSkybox:      "skybox",
	QueueTransparent: "transparent",
	QueueUI:          "ui",
}

func (q RenderQueue) String() string {
	if !q.Valid() {
		return "unknown"
	}
	return queueNames[q]
}

// Valid reports whether q is one of the four queue kinds.
func (q RenderQueue) Valid() bool {
	return q < queueCount
}

// ParseRenderQueue parses a queue name, case-insensitively.
//
// Parameters:
//   - s: the name, one of "opaque", "skybox", "transparent" or "ui"
//
// Returns:
//   - RenderQueue: the parsed queue
//   - error: an error if the name is unknown
func ParseRenderQueue(s string) (RenderQueue, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range queueNames {
		if n == name {
			return RenderQueue(i), nil
		}
	}
	return 0, errors.Errorf("unknown render queue %q", s)
}

func (q RenderQueue) MarshalYAML() (any, error) {
	if !q.Valid() {
		return nil, errors.Errorf("invalid render queue %d", q)
	}
	return q.String(), nil
}

func (q *RenderQueue) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return errors.Wrap(err, "render queue")
	}
	parsed, err := ParseRenderQueue(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ValidateOrder checks that order names every queue kind exactly once.
//
// Parameters:
//   - order: the submission order
//
// Returns:
//   - error: an error describing the first missing, duplicate or invalid entry
func ValidateOrder(order []RenderQueue) error {
	if len(order) != QueueCount {
		return errors.Errorf("queue order has %d entries, want %d", len(order), QueueCount)
	}
	var seen [queueCount]bool
	for _, q := range order {
		if !q.Valid() {
			return errors.Errorf("queue order contains invalid queue %d", q)
		}
		if seen[q] {
			return errors.Errorf("queue order lists %s twice", q)
		}
		seen[q] = true
	}
	return nil
}
