package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/mindmap"
	"github.com/aretw0/notenest/pkg/query"
	"github.com/aretw0/notenest/pkg/store"
)

// DefaultMapTitle names maps created without a title.
const DefaultMapTitle = "Untitled Mind Map"

var (
	mapSearch string
	mapJSON   bool
	mapYes    bool
	nodeText  string
	viewW     float64
	viewH     float64
)

var mapCmd = &cobra.Command{
	Use:     "map",
	Aliases: []string{"mindmap"},
	Short:   "Manage mind maps",
}

var mapCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a mind map with a single root node",
	RunE: func(cmd *cobra.Command, args []string) error {
		title := joinArgs(args)
		if title == "" {
			title = DefaultMapTitle
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		state := st.Dispatch(cmd.Context(), store.CreateMindMap{Title: title})
		done(cmd, "%s", state.MindMaps[len(state.MindMaps)-1].ID)
		return nil
	},
}

var mapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mind maps, most recently modified first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		maps := query.SortMindMaps(query.SearchMindMaps(st.Snapshot().MindMaps, mapSearch))
		if mapJSON {
			return writeJSON(cmd, maps)
		}
		tw := newTable(cmd.OutOrStdout())
		for _, m := range maps {
			fmt.Fprintf(tw, "%s\t%s\t%d nodes\t%s\n", m.ID, m.Title, len(m.Nodes), formatMillis(m.ModifiedAt))
		}
		return tw.Flush()
	},
}

var mapShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a mind map as a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		m, ok := st.Snapshot().FindMindMap(args[0])
		if !ok {
			return notFound("mind map", args[0])
		}
		if mapJSON {
			return writeJSON(cmd, m)
		}

		out := cmd.OutOrStdout()
		tl, br := mindmap.Bounds(m)
		fmt.Fprintf(out, "%s (%d nodes, %gx%g)\n", m.Title, len(m.Nodes), br.X-tl.X, br.Y-tl.Y)
		printTree(out, m)
		return nil
	},
}

// printTree writes the nodes depth-first, children in id order.
func printTree(w io.Writer, m core.MindMap) {
	children := make(map[string][]string)
	for _, id := range mindmap.SortedIDs(m) {
		if p := m.Nodes[id].ParentID; p != nil {
			children[*p] = append(children[*p], id)
		}
	}
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n := m.Nodes[id]
		fmt.Fprintf(w, "%*s- %s [%s @ %g,%g]\n", depth*2, "", n.Text, n.ID, n.Position.X, n.Position.Y)
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}
	if _, ok := m.Root(); ok {
		walk(m.RootID, 0)
	}
}

// editMap runs fn in an editor session over the map and stores the result.
func editMap(cmd *cobra.Command, id string, fn func(e *mindmap.Editor) error) (core.MindMap, error) {
	st, err := openStore(cmd)
	if err != nil {
		return core.MindMap{}, err
	}
	m, ok := st.Snapshot().FindMindMap(id)
	if !ok {
		return core.MindMap{}, notFound("mind map", id)
	}

	editor := mindmap.NewEditor(m, mindmap.WithIDs(st.Env().IDs))
	if err := fn(editor); err != nil {
		return core.MindMap{}, err
	}
	result := editor.Result()
	st.Dispatch(cmd.Context(), store.UpdateMindMap{MindMap: result})
	return result, nil
}

var mapAddNodeCmd = &cobra.Command{
	Use:   "add-node <map> [parent]",
	Short: "Add a child node (under the root by default)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var child core.MindMapNode
		_, err := editMap(cmd, args[0], func(e *mindmap.Editor) error {
			if len(args) == 2 {
				if err := e.Select(args[1]); err != nil {
					return fmt.Errorf("parent %s: %w", args[1], err)
				}
			}
			var err error
			if child, err = e.AddChild(); err != nil {
				return err
			}
			if nodeText != "" {
				if err := e.CommitEdit(nodeText); err != nil {
					return err
				}
				child.Text = nodeText
			}
			return nil
		})
		if err != nil {
			return err
		}
		done(cmd, "%s", child.ID)
		return nil
	},
}

var mapRenameNodeCmd = &cobra.Command{
	Use:   "rename-node <map> <node> <text>",
	Short: "Change the text of a node",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := joinArgs(args[2:])
		_, err := editMap(cmd, args[0], func(e *mindmap.Editor) error {
			if err := e.BeginEdit(args[1]); err != nil {
				return fmt.Errorf("node %s: %w", args[1], err)
			}
			return e.CommitEdit(text)
		})
		if err != nil {
			return err
		}
		done(cmd, "renamed %s", args[1])
		return nil
	},
}

var mapMoveNodeCmd = &cobra.Command{
	Use:   "move-node <map> <node> <x> <y>",
	Short: "Place a node at logical coordinates",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid x %q: %w", args[2], err)
		}
		y, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid y %q: %w", args[3], err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		m, ok := st.Snapshot().FindMindMap(args[0])
		if !ok {
			return notFound("mind map", args[0])
		}
		m, err = mindmap.Move(m, args[1], core.Point{X: x, Y: y})
		if err != nil {
			return fmt.Errorf("node %s: %w", args[1], err)
		}

		st.Dispatch(cmd.Context(), store.UpdateMindMap{MindMap: m})
		done(cmd, "moved %s to %g,%g", args[1], x, y)
		return nil
	},
}

var mapDeleteNodeCmd = &cobra.Command{
	Use:   "delete-node <map> <node>",
	Short: "Delete a node and everything under it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var removed []string
		_, err := editMap(cmd, args[0], func(e *mindmap.Editor) error {
			if err := e.Select(args[1]); err != nil {
				return fmt.Errorf("node %s: %w", args[1], err)
			}
			n := len(mindmap.Subtree(e.Map(), args[1]))
			ok, err := confirm(cmd, mapYes, fmt.Sprintf("Delete %d node(s)?", n))
			if err != nil {
				return err
			}
			if !ok {
				return errCancelled
			}
			removed, err = e.DeleteSelected()
			return err
		})
		if errors.Is(err, errCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		done(cmd, "deleted %d node(s)", len(removed))
		return nil
	},
}

var mapCenterCmd = &cobra.Command{
	Use:   "center <map>",
	Short: "Print the viewport that centres the root on a screen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		m, ok := st.Snapshot().FindMindMap(args[0])
		if !ok {
			return notFound("mind map", args[0])
		}

		editor := mindmap.NewEditor(m)
		editor.CenterView(viewW, viewH)
		v := editor.Viewport()
		if mapJSON {
			return writeJSON(cmd, v)
		}
		done(cmd, "offset %g,%g zoom %g", v.Offset.X, v.Offset.Y, v.Zoom)
		return nil
	},
}

var mapDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a mind map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		m, ok := st.Snapshot().FindMindMap(args[0])
		if !ok {
			return notFound("mind map", args[0])
		}
		ok, err = confirm(cmd, mapYes, fmt.Sprintf("Delete mind map %q?", m.Title))
		if err != nil || !ok {
			return err
		}

		st.Dispatch(cmd.Context(), store.DeleteMindMap{ID: m.ID})
		done(cmd, "deleted %s", m.ID)
		return nil
	},
}

var mapValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every mind map for a reachable root and no orphans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		bad := 0
		for _, m := range st.Snapshot().MindMaps {
			if err := mindmap.Validate(m); err != nil {
				bad++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", m.ID, err)
			}
		}
		if bad > 0 {
			return fmt.Errorf("%d invalid mind map(s)", bad)
		}
		done(cmd, "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.AddCommand(mapCreateCmd, mapListCmd, mapShowCmd, mapAddNodeCmd, mapRenameNodeCmd,
		mapMoveNodeCmd, mapDeleteNodeCmd, mapCenterCmd, mapDeleteCmd, mapValidateCmd)

	mapListCmd.Flags().StringVarP(&mapSearch, "search", "s", "", "Case-insensitive title search")
	for _, c := range []*cobra.Command{mapListCmd, mapShowCmd, mapCenterCmd} {
		c.Flags().BoolVar(&mapJSON, "json", false, "Output in JSON format")
	}
	// Coordinates may be negative; everything after the map id is positional.
	mapMoveNodeCmd.Flags().SetInterspersed(false)
	mapAddNodeCmd.Flags().StringVar(&nodeText, "text", "", "Node text (default: "+mindmap.ChildText+")")
	mapCenterCmd.Flags().Float64Var(&viewW, "width", 800, "Screen width in pixels")
	mapCenterCmd.Flags().Float64Var(&viewH, "height", 600, "Screen height in pixels")
	for _, c := range []*cobra.Command{mapDeleteNodeCmd, mapDeleteCmd} {
		c.Flags().BoolVarP(&mapYes, "yes", "y", false, "Do not ask for confirmation")
	}
}
