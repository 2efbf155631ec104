// condition/update.go
package condition

import "errors"

/*
 * Pure tree edits.
 *
 * The editor replaces nodes wholesale: every mutation produces a new parent
 * slice, never an in-place write, so an edited tree shares no condition
 * slices with its predecessor and stale references held by the hosting UI
 * keep observing the old tree.
 *
 * Nodes are addressed by index paths: a sequence of positions into nested
 * Conditions slices, root first. ReplaceAt and RemoveAt address an existing
 * node; InsertAt addresses the slot the new node will occupy, so its final
 * index may equal the target slice's length.
 */

// Path addresses a node by indices into nested Conditions slices.
type Path []int

// Sentinel errors for tree edits.
var (
	// ErrEmptyPath indicates an edit addressed the root itself; the root is
	// replaced by the caller, not through the edit functions.
	ErrEmptyPath = errors.New("edit path is empty")

	// ErrPathOutOfRange indicates a path index outside its slice's bounds.
	ErrPathOutOfRange = errors.New("edit path index out of range")

	// ErrNotAGroup indicates a path descending through a condition row.
	ErrNotAGroup = errors.New("edit path descends into a non-group node")
)

// ReplaceAt returns a new tree with the node at path replaced by item.
// The input tree is not modified.
func ReplaceAt(root ConditionRoot, path Path, item ConditionItem) (ConditionRoot, error) {
	return editRoot(root, path, func(items []ConditionItem, idx int) ([]ConditionItem, error) {
		if idx < 0 || idx >= len(items) {
			return nil, ErrPathOutOfRange
		}
		out := make([]ConditionItem, len(items))
		copy(out, items)
		out[idx] = item
		return out, nil
	})
}

// InsertAt returns a new tree with item inserted at path, shifting later
// siblings right. The final path index may equal the sibling count to
// append. The input tree is not modified.
func InsertAt(root ConditionRoot, path Path, item ConditionItem) (ConditionRoot, error) {
	return editRoot(root, path, func(items []ConditionItem, idx int) ([]ConditionItem, error) {
		if idx < 0 || idx > len(items) {
			return nil, ErrPathOutOfRange
		}
		out := make([]ConditionItem, 0, len(items)+1)
		out = append(out, items[:idx]...)
		out = append(out, item)
		out = append(out, items[idx:]...)
		return out, nil
	})
}

// RemoveAt returns a new tree with the node at path removed along with its
// subtree. The input tree is not modified.
func RemoveAt(root ConditionRoot, path Path) (ConditionRoot, error) {
	return editRoot(root, path, func(items []ConditionItem, idx int) ([]ConditionItem, error) {
		if idx < 0 || idx >= len(items) {
			return nil, ErrPathOutOfRange
		}
		out := make([]ConditionItem, 0, len(items)-1)
		out = append(out, items[:idx]...)
		out = append(out, items[idx+1:]...)
		return out, nil
	})
}

// editRoot applies edit at the path's final index, rebuilding every slice
// along the way.
func editRoot(root ConditionRoot, path Path, edit func([]ConditionItem, int) ([]ConditionItem, error)) (ConditionRoot, error) {
	if len(path) == 0 {
		return ConditionRoot{}, ErrEmptyPath
	}
	items, err := editItems(root.Conditions, path, edit)
	if err != nil {
		return ConditionRoot{}, err
	}
	root.Conditions = items
	return root, nil
}

// editItems recurses to the slice holding the path's final index and applies
// edit there. Intermediate slices are copied, not mutated.
func editItems(items []ConditionItem, path Path, edit func([]ConditionItem, int) ([]ConditionItem, error)) ([]ConditionItem, error) {
	idx := path[0]
	if len(path) == 1 {
		return edit(items, idx)
	}

	if idx < 0 || idx >= len(items) {
		return nil, ErrPathOutOfRange
	}
	group, ok := items[idx].(ConditionGroup)
	if !ok {
		return nil, ErrNotAGroup
	}

	children, err := editItems(group.Conditions, path[1:], edit)
	if err != nil {
		return nil, err
	}

	out := make([]ConditionItem, len(items))
	copy(out, items)
	group.Conditions = children
	out[idx] = group
	return out, nil
}
