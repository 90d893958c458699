package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/query"
	"github.com/aretw0/notenest/pkg/store"
)

var (
	noteTitle   string
	noteContent string
	noteFolder  string
	noteSort    string
	noteSearch  string
	noteFuzzy   bool
	noteJSON    bool
	noteYes     bool
	attachType  string
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		env := st.Env()
		stamp := env.IDs.Stamp()
		note := core.Note{
			ID:          core.FormatID(core.PrefixNote, stamp),
			Title:       noteTitle,
			Content:     noteContent,
			Attachments: []core.Attachment{},
			CreatedAt:   stamp,
			ModifiedAt:  stamp,
		}
		if noteFolder != "" {
			note.Folder = core.StringPtr(noteFolder)
		}

		st.Dispatch(cmd.Context(), store.SaveNote{Note: note})
		done(cmd, "%s", note.ID)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a note's title, content or folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		note, ok := st.Snapshot().FindNote(args[0])
		if !ok {
			return notFound("note", args[0])
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			note.Title = noteTitle
		}
		if flags.Changed("content") {
			note.Content = noteContent
		}
		if flags.Changed("folder") {
			note.Folder = nil
			if noteFolder != "" {
				note.Folder = core.StringPtr(noteFolder)
			}
		}
		note.ModifiedAt = core.Millis(st.Env().Clock)

		st.Dispatch(cmd.Context(), store.SaveNote{Note: note})
		done(cmd, "updated %s", note.ID)
		return nil
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		note, ok := st.Snapshot().FindNote(args[0])
		if !ok {
			return notFound("note", args[0])
		}
		if noteJSON {
			return writeJSON(cmd, note)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", note.Title)
		if note.Folder != nil {
			fmt.Fprintf(out, "folder: %s\n", *note.Folder)
		}
		fmt.Fprintf(out, "created: %s  modified: %s\n\n", formatMillis(note.CreatedAt), formatMillis(note.ModifiedAt))
		fmt.Fprintln(out, note.Content)
		for _, a := range note.Attachments {
			fmt.Fprintf(out, "[%s] %s (%d bytes encoded)\n", a.Type, a.ID, len(a.Data))
		}
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		notes := st.Snapshot().Notes
		if noteFolder != "" {
			var inFolder []core.Note
			for _, n := range notes {
				if n.Folder != nil && *n.Folder == noteFolder {
					inFolder = append(inFolder, n)
				}
			}
			notes = inFolder
		}
		switch {
		case noteSearch != "" && noteFuzzy:
			notes = query.FuzzyNotes(notes, noteSearch)
		case noteSearch != "":
			notes = query.SortNotes(query.SearchNotes(notes, noteSearch), query.ParseNoteOrder(noteSort))
		default:
			notes = query.SortNotes(notes, query.ParseNoteOrder(noteSort))
		}

		if noteJSON {
			return writeJSON(cmd, notes)
		}
		tw := newTable(cmd.OutOrStdout())
		for _, n := range notes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Title, formatMillis(n.ModifiedAt), excerpt(n.Content, 40))
		}
		return tw.Flush()
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		note, ok := st.Snapshot().FindNote(args[0])
		if !ok {
			return notFound("note", args[0])
		}
		ok, err = confirm(cmd, noteYes, fmt.Sprintf("Delete note %q?", note.Title))
		if err != nil || !ok {
			return err
		}

		st.Dispatch(cmd.Context(), store.DeleteNote{ID: note.ID})
		done(cmd, "deleted %s", note.ID)
		return nil
	},
}

var noteAttachCmd = &cobra.Command{
	Use:   "attach <id> <file>",
	Short: "Attach an image, audio clip or doodle to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read attachment: %w", err)
		}
		mime := http.DetectContentType(data)
		kind, err := attachmentType(attachType, mime)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		note, ok := st.Snapshot().FindNote(args[0])
		if !ok {
			return notFound("note", args[0])
		}

		env := st.Env()
		att := core.Attachment{
			ID:   env.IDs.Next(core.PrefixAttachment),
			Type: kind,
			Data: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		}
		note = note.WithAttachment(att)
		note.ModifiedAt = core.Millis(env.Clock)

		st.Dispatch(cmd.Context(), store.SaveNote{Note: note})
		done(cmd, "%s", att.ID)
		return nil
	},
}

var noteDetachCmd = &cobra.Command{
	Use:   "detach <id> <attachment-id>",
	Short: "Remove an attachment from a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		note, ok := st.Snapshot().FindNote(args[0])
		if !ok {
			return notFound("note", args[0])
		}

		before := len(note.Attachments)
		note = note.WithoutAttachment(args[1])
		if len(note.Attachments) == before {
			return notFound("attachment", args[1])
		}
		note.ModifiedAt = core.Millis(st.Env().Clock)

		st.Dispatch(cmd.Context(), store.SaveNote{Note: note})
		done(cmd, "detached %s", args[1])
		return nil
	},
}

// attachmentType picks the attachment kind from an explicit flag or the
// sniffed content type.
func attachmentType(explicit, mime string) (core.AttachmentType, error) {
	if explicit != "" {
		t := core.AttachmentType(explicit)
		if !t.Valid() {
			return "", fmt.Errorf("unknown attachment type %q (image, audio, doodle)", explicit)
		}
		return t, nil
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return core.AttachmentImage, nil
	case strings.HasPrefix(mime, "audio/"), mime == "application/ogg", mime == "video/webm":
		return core.AttachmentAudio, nil
	}
	return "", fmt.Errorf("cannot infer attachment type from %s; use --type", mime)
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteEditCmd, noteShowCmd, noteListCmd, noteDeleteCmd, noteAttachCmd, noteDetachCmd)

	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVar(&noteTitle, "title", "", "Note title")
		c.Flags().StringVar(&noteContent, "content", "", "Note content (markup)")
		c.Flags().StringVar(&noteFolder, "folder", "", "Folder name")
	}
	noteAddCmd.MarkFlagRequired("title")

	noteShowCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
	noteListCmd.Flags().StringVar(&noteSort, "sort", "modified", "Sort order: modified, created, title")
	noteListCmd.Flags().StringVarP(&noteSearch, "search", "s", "", "Case-insensitive title search")
	noteListCmd.Flags().BoolVar(&noteFuzzy, "fuzzy", false, "Rank --search results by fuzzy match")
	noteListCmd.Flags().StringVar(&noteFolder, "folder", "", "Only notes in this folder")
	noteDeleteCmd.Flags().BoolVarP(&noteYes, "yes", "y", false, "Do not ask for confirmation")
	noteAttachCmd.Flags().StringVar(&attachType, "type", "", "Attachment type: image, audio, doodle (default: detected)")
}
