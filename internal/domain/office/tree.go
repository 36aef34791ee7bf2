package office

import (
	"fmt"
	"sync"

	"github.com/linskybing/survey-platform/pkg/errs"
)

// MaxDepth bounds parent walks: moha -> district -> division -> gn.
const MaxDepth = 4

//go:generate mockgen -destination=mock/mock_hierarchy.go -package=mock github.com/linskybing/survey-platform/internal/domain/office Hierarchy

// Hierarchy resolves office ancestry. The resolver depends only on this interface.
type Hierarchy interface {
	GetOffice(code string) (Office, error)
	IsDescendant(candidateCode, ancestorCode string) bool
	Descendants(code string) []string
}

type node struct {
	office   Office
	parent   int
	children []int
}

// Tree is an arena of offices with parent indices. It is safe for concurrent use and can
// be swapped wholesale with Replace.
type Tree struct {
	mu    sync.RWMutex
	nodes []node
	index map[string]int
}

func NewTree(offices []Office) (*Tree, error) {
	t := &Tree{}
	if err := t.Replace(offices); err != nil {
		return nil, err
	}
	return t, nil
}

// Replace validates offices and rebuilds the arena. The existing arena is kept on error.
func (t *Tree) Replace(offices []Office) error {
	nodes := make([]node, len(offices))
	index := make(map[string]int, len(offices))
	for i, o := range offices {
		if !o.Level.Valid() {
			return fmt.Errorf("office %s: invalid level %q", o.Code, o.Level)
		}
		if _, dup := index[o.Code]; dup {
			return fmt.Errorf("office %s: duplicate code", o.Code)
		}
		index[o.Code] = i
		nodes[i] = node{office: o, parent: -1}
	}

	roots := 0
	for i := range nodes {
		o := nodes[i].office
		if o.ParentCode == nil || *o.ParentCode == "" {
			if o.Level != LevelMOHA {
				return fmt.Errorf("office %s: only moha offices may be roots", o.Code)
			}
			roots++
			continue
		}
		p, ok := index[*o.ParentCode]
		if !ok {
			return fmt.Errorf("office %s: unknown parent %s", o.Code, *o.ParentCode)
		}
		if nodes[p].office.Level.Rank() != o.Level.Rank()+1 {
			return fmt.Errorf("office %s (%s): parent %s must be one level up, not %s",
				o.Code, o.Level, *o.ParentCode, nodes[p].office.Level)
		}
		nodes[i].parent = p
		nodes[p].children = append(nodes[p].children, i)
	}
	if len(nodes) > 0 && roots != 1 {
		return fmt.Errorf("office tree must have exactly one moha root, found %d", roots)
	}

	t.mu.Lock()
	t.nodes = nodes
	t.index = index
	t.mu.Unlock()
	return nil
}

func (t *Tree) GetOffice(code string) (Office, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[code]
	if !ok {
		return Office{}, errs.NotFound("office %s not found", code)
	}
	return t.nodes[i].office, nil
}

// IsDescendant reports whether candidate equals ancestor or sits beneath it.
// Unknown codes are never descendants.
func (t *Tree) IsDescendant(candidateCode, ancestorCode string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[candidateCode]
	if !ok {
		return false
	}
	target, ok := t.index[ancestorCode]
	if !ok {
		return false
	}
	for depth := 0; depth < MaxDepth && i >= 0; depth++ {
		if i == target {
			return true
		}
		i = t.nodes[i].parent
	}
	return false
}

// Ancestors returns the chain from code up to the root, starting with code itself.
func (t *Tree) Ancestors(code string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[code]
	if !ok {
		return nil
	}
	chain := make([]string, 0, MaxDepth)
	for depth := 0; depth < MaxDepth && i >= 0; depth++ {
		chain = append(chain, t.nodes[i].office.Code)
		i = t.nodes[i].parent
	}
	return chain
}

// Descendants returns code and every office beneath it.
func (t *Tree) Descendants(code string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	root, ok := t.index[code]
	if !ok {
		return nil
	}
	out := []string{}
	stack := []int{root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, t.nodes[i].office.Code)
		stack = append(stack, t.nodes[i].children...)
	}
	return out
}

func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}
