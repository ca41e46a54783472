// Package scene provides the scene graph for the Earth/Moon view: groups,
// meshes, point clouds and the materials that describe how they are drawn.
//
// The graph holds no GPU state. Renderers walk it every frame and resolve
// geometry and textures on their own side.
package scene

import (
	"github.com/Faultbox/earthglow/internal/engine/geometry"
	"github.com/Faultbox/earthglow/internal/starfield"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Drawable is implemented by *Mesh and *Points.
type Drawable interface {
	drawable()
}

// Mesh is triangle geometry with a material.
type Mesh struct {
	Geometry *geometry.Geometry
	Material Material
}

// Points is a point cloud with a material.
type Points struct {
	Cloud    *starfield.Cloud
	Material Material
}

func (*Mesh) drawable()   {}
func (*Points) drawable() {}

// Node is a local coordinate frame. A node with a nil Drawable is a group.
type Node struct {
	Name     string
	Position gm.Vec3
	Rotation gm.Vec3 // Euler angles, XYZ order, radians
	Scale    gm.Vec3
	Visible  bool

	Drawable Drawable
	Children []*Node
	parent   *Node
}

// NewGroup creates an empty group with unit scale.
func NewGroup(name string) *Node {
	return &Node{Name: name, Scale: gm.Splat(1), Visible: true}
}

// NewNode creates a node carrying d.
func NewNode(name string, d Drawable) *Node {
	n := NewGroup(name)
	n.Drawable = d
	return n
}

// Add parents children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// LocalMatrix returns T * R * S for the node.
func (n *Node) LocalMatrix() gm.Mat4 {
	return gm.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix composes local matrices up to the root.
func (n *Node) WorldMatrix() gm.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits visible nodes depth-first with their world matrices.
// Invisible nodes hide their whole subtree.
func (n *Node) Walk(fn func(node *Node, world gm.Mat4)) {
	n.walk(gm.Identity(), fn)
}

func (n *Node) walk(parent gm.Mat4, fn func(*Node, gm.Mat4)) {
	if !n.Visible {
		return
	}
	world := parent.Mul(n.LocalMatrix())
	fn(n, world)
	for _, c := range n.Children {
		c.walk(world, fn)
	}
}
