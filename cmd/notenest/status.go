package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/notenest"
	"github.com/aretw0/notenest/pkg/adapters/fs"
	"github.com/aretw0/notenest/pkg/store"
)

var (
	statusJSON    bool
	statusDiagram bool
)

// statusReport is the combined introspection output of store and repository.
type statusReport struct {
	Version    string `json:"version"`
	Store      any    `json:"store"`
	Repository any    `json:"repository,omitempty"`
}

// topologyNode is the tree shape rendered by introspection.TreeDiagram.
// Status must be one of the introspection style classes.
type topologyNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []topologyNode
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and repository state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		report := statusReport{Version: notenest.Version, Store: st.State()}
		if intro, ok := st.Repository().(introspection.Introspectable); ok {
			report.Repository = intro.State()
		}

		switch {
		case statusDiagram:
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "notenest"
			config.SecondaryLabel = "NoteNest Topology"
			fmt.Fprintln(cmd.OutOrStdout(), introspection.TreeDiagram(buildTopology(report), config))
			return nil
		case statusJSON:
			return writeJSON(cmd, report)
		}

		out := cmd.OutOrStdout()
		tw := newTable(out)
		s, _ := report.Store.(store.StoreState)
		fmt.Fprintf(tw, "version\t%s\n", report.Version)
		fmt.Fprintf(tw, "notes\t%d\n", s.Notes)
		fmt.Fprintf(tw, "tasks\t%d\n", s.Tasks)
		fmt.Fprintf(tw, "mind maps\t%d\n", s.MindMaps)
		fmt.Fprintf(tw, "lock\t%t\n", s.LockEnabled)
		if r, ok := report.Repository.(fs.RepositoryState); ok {
			fmt.Fprintf(tw, "path\t%s\n", r.StatePath)
			fmt.Fprintf(tw, "versioned\t%t\n", !r.Gitless)
			fmt.Fprintf(tw, "read-only\t%t\n", r.ReadOnly)
		}
		return tw.Flush()
	},
}

func buildTopology(report statusReport) topologyNode {
	s, _ := report.Store.(store.StoreState)
	storeNode := topologyNode{
		Name:   "Store",
		Status: "running",
		Metadata: map[string]string{
			"type":      "process",
			"notes":     strconv.Itoa(s.Notes),
			"tasks":     strconv.Itoa(s.Tasks),
			"mind_maps": strconv.Itoa(s.MindMaps),
		},
	}

	root := topologyNode{
		Name:     "NoteNest",
		Status:   "running",
		Metadata: map[string]string{"type": "container", "version": report.Version},
		Children: []topologyNode{storeNode},
	}

	r, ok := report.Repository.(fs.RepositoryState)
	if !ok {
		return root
	}
	watcher := "suspended"
	if r.WatcherActive {
		watcher = "running"
	}
	git := "running"
	if r.Gitless {
		git = "suspended"
	}
	root.Children = append(root.Children, topologyNode{
		Name:   "Repository",
		Status: "running",
		Metadata: map[string]string{
			"type": "process",
			"path": r.StatePath,
		},
		Children: []topologyNode{
			{Name: "Watcher", Status: watcher, Metadata: map[string]string{"type": "goroutine"}},
			{Name: "Git", Status: git, Metadata: map[string]string{"type": "process"}},
		},
	})
	return root
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	statusCmd.Flags().BoolVar(&statusDiagram, "diagram", false, "Output a Mermaid topology diagram")
}
