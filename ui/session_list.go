package ui

import (
	"fmt"
	"strings"

	"genchat/model"
	"genchat/storage"
)

func renderSessionList(sessions []model.Session, currentID string) string {
	if len(sessions) == 0 {
		return DimStyle.Render("No sessions yet. /new starts one.")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Sessions") + "\n\n")
	for i, s := range sessions {
		marker := "  "
		title := s.Title
		if s.ID == currentID {
			marker = "▶ "
			title = HighlightStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%2d. %s %s\n", marker, i+1, title,
			DimStyle.Render(s.UpdatedAt.Local().Format("2006-01-02 15:04")))
		if s.LastMessage != "" {
			b.WriteString("       " + DimStyle.Render(truncate(firstLine(s.LastMessage), 70)) + "\n")
		}
	}
	return b.String()
}

// renderSearchResults lists matches grouped by session. number assigns the
// /open index of a session.
func renderSearchResults(query string, matches []storage.MessageMatch, number func(id, title string) int) string {
	if len(matches) == 0 {
		return DimStyle.Render(fmt.Sprintf("No messages match %q.", query))
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Search: %s", query)) + DimStyle.Render(fmt.Sprintf("  %d matches", len(matches))) + "\n\n")
	last := ""
	for _, m := range matches {
		if m.SessionID != last {
			n := number(m.SessionID, m.SessionTitle)
			fmt.Fprintf(&b, "%2d. %s\n", n, HighlightStyle.Render(m.SessionTitle))
			last = m.SessionID
		}
		role := AssistantStyle.Render("assistant")
		if m.Role == model.RoleUser {
			role = UserStyle.Render("you")
		}
		fmt.Fprintf(&b, "      %s %s\n", role, truncate(firstLine(m.Preview), 70))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
