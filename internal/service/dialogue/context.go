package dialogue

import (
	"github.com/seu-repo/sigec-casa/internal/domain"
)

// Variable groups and keys in the tree context's store.
const (
	varGroupLastTarget = "LastTarget"

	varKeyMoniker = "moniker"
	varKeyKind    = "kind"
	varKeyName    = "name"
)

// Target kind tags written alongside the last-target memory. The "it"
// handlers only know how to act on kinds they recognize.
const (
	targetKindLight = "light"
)

// TreeContext is the mutable scratch space shared by every handler
// during a tree invocation. It holds the current slot list, which is
// replaced whenever a new event arrives mid-conversation, and a small
// grouped variable store that remembers things like "the light we just
// talked about" across turns. Created once per process and reused;
// never persisted.
type TreeContext struct {
	slots   []domain.Slot
	trusted bool
	vars    map[string]map[string]string
}

func NewTreeContext() *TreeContext {
	return &TreeContext{vars: make(map[string]map[string]string)}
}

// SetSlots installs the event's slot list as the current one and caches
// whether the whole event is trustworthy enough to short-circuit
// per-slot clarification.
func (t *TreeContext) SetSlots(ev *domain.RecognitionEvent) {
	t.slots = ev.Slots
	t.trusted = domain.AllSlotsAtLeast(ev, domain.ConfidenceFull)
}

// Slot returns the named slot from the current list, or nil.
func (t *TreeContext) Slot(name string) *domain.Slot {
	for i := range t.slots {
		if t.slots[i].Name == name {
			return &t.slots[i]
		}
	}
	return nil
}

// FullyTrusted reports whether every slot of the current event was at
// full confidence when it was installed.
func (t *TreeContext) FullyTrusted() bool { return t.trusted }

// SetVar stores a value under group/key.
func (t *TreeContext) SetVar(group, key, value string) {
	g, ok := t.vars[group]
	if !ok {
		g = make(map[string]string)
		t.vars[group] = g
	}
	g[key] = value
}

// Var returns the value under group/key and whether it is set.
func (t *TreeContext) Var(group, key string) (string, bool) {
	g, ok := t.vars[group]
	if !ok {
		return "", false
	}
	v, ok := g[key]
	return v, ok && v != ""
}

// ClearGroup drops every variable in the group.
func (t *TreeContext) ClearGroup(group string) {
	delete(t.vars, group)
}
