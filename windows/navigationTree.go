// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	"github.com/magpierre/fyne-datatable/internal/loader"
)

// TreeNodeType represents the type of node in the navigation tree
type TreeNodeType string

const (
	NodeTypeShare  TreeNodeType = "share"
	NodeTypeSchema TreeNodeType = "schema"
	NodeTypeTable  TreeNodeType = "table"
)

// TreeNode represents a node in the navigation tree
type TreeNode struct {
	ID       string
	NodeType TreeNodeType
	Name     string
	Share    string
	Schema   string
	Table    delta_sharing.Table // table nodes only
	Children []string
}

// NavigationTree holds the share > schema > table hierarchy of a Delta
// Sharing server.
type NavigationTree struct {
	nodes   map[string]*TreeNode
	rootIDs []string
	mu      sync.RWMutex
}

// NewNavigationTree creates an empty tree.
func NewNavigationTree() *NavigationTree {
	return &NavigationTree{nodes: make(map[string]*TreeNode)}
}

func nodeID(nodeType TreeNodeType, share, schema, table string) string {
	switch nodeType {
	case NodeTypeShare:
		return fmt.Sprintf("share:%s", share)
	case NodeTypeSchema:
		return fmt.Sprintf("share:%s:schema:%s", share, schema)
	default:
		return fmt.Sprintf("share:%s:schema:%s:table:%s", share, schema, table)
	}
}

// Load replaces the tree with the shares and tables of client. Every table
// is listed up front, so expanding a node never calls the server.
func (nt *NavigationTree) Load(ctx context.Context, client *loader.SharingClient) error {
	shares, err := client.Shares(ctx)
	if err != nil {
		return err
	}
	tables, err := client.Tables(ctx)
	if err != nil {
		return err
	}
	nt.populate(shares, tables)
	return nil
}

// populate builds the hierarchy. Shares keep server order; a table whose
// share was not listed adds that share.
func (nt *NavigationTree) populate(shares []string, tables []delta_sharing.Table) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	nt.nodes = make(map[string]*TreeNode)
	nt.rootIDs = make([]string, 0, len(shares))

	shareNode := func(name string) *TreeNode {
		id := nodeID(NodeTypeShare, name, "", "")
		if node, ok := nt.nodes[id]; ok {
			return node
		}
		node := &TreeNode{ID: id, NodeType: NodeTypeShare, Name: name, Share: name}
		nt.nodes[id] = node
		nt.rootIDs = append(nt.rootIDs, id)
		return node
	}
	for _, name := range shares {
		shareNode(name)
	}

	for _, table := range tables {
		share := shareNode(table.Share)

		schemaID := nodeID(NodeTypeSchema, table.Share, table.Schema, "")
		schema, ok := nt.nodes[schemaID]
		if !ok {
			schema = &TreeNode{
				ID:       schemaID,
				NodeType: NodeTypeSchema,
				Name:     table.Schema,
				Share:    table.Share,
				Schema:   table.Schema,
			}
			nt.nodes[schemaID] = schema
			share.Children = append(share.Children, schemaID)
		}

		tableID := nodeID(NodeTypeTable, table.Share, table.Schema, table.Name)
		if _, dup := nt.nodes[tableID]; dup {
			continue
		}
		nt.nodes[tableID] = &TreeNode{
			ID:       tableID,
			NodeType: NodeTypeTable,
			Name:     table.Name,
			Share:    table.Share,
			Schema:   table.Schema,
			Table:    table,
		}
		schema.Children = append(schema.Children, tableID)
	}
}

// GetChildren returns the child node IDs for a given parent node
// Returns root nodes if nodeID is empty
func (nt *NavigationTree) GetChildren(id widget.TreeNodeID) []widget.TreeNodeID {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if id == "" {
		return nt.rootIDs
	}
	if node, ok := nt.nodes[id]; ok {
		return node.Children
	}
	return nil
}

// IsBranch returns true if the node can have children
func (nt *NavigationTree) IsBranch(id widget.TreeNodeID) bool {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if id == "" {
		return true
	}
	node, ok := nt.nodes[id]
	return ok && node.NodeType != NodeTypeTable
}

// GetNode retrieves a node by ID
func (nt *NavigationTree) GetNode(id widget.TreeNodeID) *TreeNode {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return nt.nodes[id]
}

// Widget creates the fyne tree. onTable is called when a table is
// selected, onTableMenu on a secondary tap of a table.
func (nt *NavigationTree) Widget(onTable func(*TreeNode), onTableMenu func(*TreeNode, *fyne.PointEvent)) *widget.Tree {
	tree := widget.NewTree(
		nt.GetChildren,
		nt.IsBranch,
		func(bool) fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.DocumentIcon()), newNodeLabel(nt, onTableMenu))
		},
		nt.updateNodeDisplay,
	)
	tree.OnSelected = func(id widget.TreeNodeID) {
		if node := nt.GetNode(id); node != nil && node.NodeType == NodeTypeTable && onTable != nil {
			onTable(node)
		}
	}
	return tree
}

func (nt *NavigationTree) updateNodeDisplay(id widget.TreeNodeID, _ bool, obj fyne.CanvasObject) {
	node := nt.GetNode(id)
	box, ok := obj.(*fyne.Container)
	if node == nil || !ok || len(box.Objects) < 2 {
		return
	}

	if icon, ok := box.Objects[0].(*widget.Icon); ok {
		switch node.NodeType {
		case NodeTypeShare:
			icon.SetResource(theme.FolderOpenIcon())
		case NodeTypeSchema:
			icon.SetResource(theme.FolderIcon())
		case NodeTypeTable:
			icon.SetResource(theme.GridIcon())
		}
	}
	if label, ok := box.Objects[1].(*nodeLabel); ok {
		label.nodeID = id
		label.SetText(node.Name)
	}
}

// nodeLabel is a tree label that reports secondary taps. Primary taps
// fall through to the tree row.
type nodeLabel struct {
	widget.Label
	tree   *NavigationTree
	nodeID widget.TreeNodeID
	onMenu func(*TreeNode, *fyne.PointEvent)
}

func newNodeLabel(tree *NavigationTree, onMenu func(*TreeNode, *fyne.PointEvent)) *nodeLabel {
	l := &nodeLabel{tree: tree, onMenu: onMenu}
	l.ExtendBaseWidget(l)
	return l
}

// TappedSecondary handles right-click
func (l *nodeLabel) TappedSecondary(e *fyne.PointEvent) {
	node := l.tree.GetNode(l.nodeID)
	if node != nil && node.NodeType == NodeTypeTable && l.onMenu != nil {
		l.onMenu(node, e)
	}
}
