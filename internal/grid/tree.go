package grid

import "strings"

// rootParentName marks a top-level subgrid in the PARENT header field.
// The comparison is case-insensitive; files in the wild use both "NONE"
// and "none".
const rootParentName = "NONE"

// buildForest assembles a flat, file-ordered list of parsed subgrids into a
// forest of trees linked by parent name.
//
// Roots keep their order of appearance, and each parent's children keep
// theirs; a file may encode several independent coverage regions, so the
// result is a forest rather than a single tree. A subgrid naming a parent
// that does not exist is a format error, never silently dropped.
func buildForest(grids []*SubGrid) ([]*SubGrid, error) {
	byName := make(map[string]*SubGrid, len(grids))
	rootCount := 0
	for _, sg := range grids {
		if _, dup := byName[sg.name]; dup {
			return nil, &ErrDuplicateSubGrid{Name: sg.name}
		}
		byName[sg.name] = sg
		if strings.EqualFold(sg.parentName, rootParentName) {
			rootCount++
		}
	}

	roots := make([]*SubGrid, 0, rootCount)
	for _, sg := range grids {
		if strings.EqualFold(sg.parentName, rootParentName) {
			roots = append(roots, sg)
			continue
		}
		parent, ok := byName[sg.parentName]
		if !ok {
			return nil, &ErrOrphanSubGrid{Name: sg.name, Parent: sg.parentName}
		}
		parent.children = append(parent.children, sg)
	}

	if len(roots) == 0 {
		return nil, &ErrBadHeader{Field: "PARENT", Reason: "no top-level subgrid (every PARENT names another grid)"}
	}

	return roots, nil
}
