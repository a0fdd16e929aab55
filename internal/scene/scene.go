// Package scene models the hierarchical scene graph the configurator hands
// to the renderer: groups, meshes, geometries, and materials. The Scene
// Controller owns all live nodes; everything else receives built subtrees
// and must not retain them across a rebuild.
package scene

// NodeKind distinguishes grouping nodes from renderable meshes.
type NodeKind string

const (
	KindGroup NodeKind = "group"
	KindMesh  NodeKind = "mesh"
)

// Node is a scene-graph node. Mesh geometry is baked in world coordinates,
// so nodes carry no transform of their own.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     NodeKind `json:"kind"`
	Visible  bool     `json:"visible"`
	Mesh     *Mesh    `json:"mesh,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// NewGroup creates an empty visible group node.
func NewGroup(id, name string) *Node {
	return &Node{ID: id, Name: name, Kind: KindGroup, Visible: true}
}

// NewMesh creates a leaf mesh node.
func NewMesh(id, name string, geo *Geometry, mat *Material) *Node {
	return &Node{
		ID:      id,
		Name:    name,
		Kind:    KindMesh,
		Visible: true,
		Mesh:    &Mesh{Geometry: geo, Material: mat},
	}
}

// Add appends children and returns the node for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// IsEmpty reports whether the node has no meshes anywhere beneath it.
// Builders return an empty node, never a partial subtree, on invalid input.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	if n.Mesh != nil {
		return false
	}
	for _, c := range n.Children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Traverse visits the node and every descendant depth-first.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// MeshCount returns the number of mesh leaves in the subtree.
func (n *Node) MeshCount() int {
	count := 0
	n.Traverse(func(node *Node) {
		if node.Mesh != nil {
			count++
		}
	})
	return count
}

// SetVisible toggles visibility for the whole subtree.
func (n *Node) SetVisible(visible bool) {
	n.Traverse(func(node *Node) { node.Visible = visible })
}

// Dispose releases the geometry of every mesh in the subtree and detaches
// the children. Materials are shared and owned by the MaterialSet, so they
// are left alone. Disposing twice is harmless.
func (n *Node) Dispose() {
	if n == nil {
		return
	}
	n.Traverse(func(node *Node) {
		if node.Mesh != nil && node.Mesh.Geometry != nil {
			node.Mesh.Geometry.Release()
		}
	})
	n.Children = nil
	n.Mesh = nil
}

// Mesh pairs a geometry with a shared material.
type Mesh struct {
	Geometry *Geometry `json:"geometry"`
	Material *Material `json:"material"`
}
