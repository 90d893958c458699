package store

import (
	"fmt"
	"strings"
)

// CommitType constants for semantic change reasons.
const (
	CommitTypeFeat     = "feat"
	CommitTypeFix      = "fix"
	CommitTypeDocs     = "docs"
	CommitTypeRefactor = "refactor"
	CommitTypeChore    = "chore"
)

// Footer is appended to every generated change reason.
const Footer = "Powered-by: NoteNest"

// FormatChangeReason builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: NoteNest
func FormatChangeReason(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(body))
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)

	return sb.String()
}

// AppendFooter appends the footer to a free-form message if not present.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if !strings.HasSuffix(msg, "\n\n") {
		msg += "\n"
	}
	return msg + Footer
}

// Describe returns the change reason recorded when action is persisted.
func Describe(action Action) string {
	switch a := action.(type) {
	case SetState:
		return FormatChangeReason(CommitTypeChore, "state", "replace state", "")
	case SaveNote:
		return FormatChangeReason(CommitTypeDocs, "notes", fmt.Sprintf("save %s", a.Note.ID), "")
	case DeleteNote:
		return FormatChangeReason(CommitTypeDocs, "notes", fmt.Sprintf("delete %s", a.ID), "")
	case AddTask:
		return FormatChangeReason(CommitTypeFeat, "tasks", fmt.Sprintf("add %q", a.Text), "")
	case UpdateTask:
		return FormatChangeReason(CommitTypeFeat, "tasks", fmt.Sprintf("update %s", a.Task.ID), "")
	case DeleteTask:
		return FormatChangeReason(CommitTypeFeat, "tasks", fmt.Sprintf("delete %s", a.ID), "")
	case UpdateSettings:
		return FormatChangeReason(CommitTypeChore, "settings", "update settings", "")
	case CreateMindMap:
		return FormatChangeReason(CommitTypeFeat, "mindmaps", fmt.Sprintf("create %q", a.Title), "")
	case UpdateMindMap:
		return FormatChangeReason(CommitTypeFeat, "mindmaps", fmt.Sprintf("update %s", a.MindMap.ID), "")
	case DeleteMindMap:
		return FormatChangeReason(CommitTypeFeat, "mindmaps", fmt.Sprintf("delete %s", a.ID), "")
	}
	return FormatChangeReason(CommitTypeChore, "", fmt.Sprintf("apply %s", action.Type()), "")
}
