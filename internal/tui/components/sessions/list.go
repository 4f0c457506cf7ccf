// Package sessions renders the session sidebar.
package sessions

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rivo/uniseg"

	"github.com/guilhermegouw/archlens/internal/session"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
	"github.com/guilhermegouw/archlens/internal/tui/util"
)

// MaxTitleGraphemes is how much of a title the sidebar shows.
const MaxTitleGraphemes = 30

// SessionList displays sessions with keyboard navigation.
type SessionList struct {
	sessions []*session.Session
	current  string
	cursor   int
	offset   int
	width    int
	height   int
	focused  bool
}

// NewSessionList creates an empty list.
func NewSessionList() *SessionList {
	return &SessionList{}
}

// SetSessions replaces the listed sessions, newest last, and marks current.
func (l *SessionList) SetSessions(sessions []*session.Session, current string) {
	l.sessions = sessions
	l.current = current
	for i, s := range sessions {
		if s.ID == current {
			l.cursor = i
		}
	}
	if l.cursor >= len(l.sessions) {
		l.cursor = max(0, len(l.sessions)-1)
	}
	l.ensureVisible()
}

// Len returns the number of sessions.
func (l *SessionList) Len() int {
	return len(l.sessions)
}

// SetSize sets the list dimensions.
func (l *SessionList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureVisible()
}

// SetFocused toggles keyboard focus.
func (l *SessionList) SetFocused(focused bool) {
	l.focused = focused
}

// Selected returns the session under the cursor.
func (l *SessionList) Selected() *session.Session {
	if l.cursor >= 0 && l.cursor < len(l.sessions) {
		return l.sessions[l.cursor]
	}
	return nil
}

// Update handles navigation keys.
func (l *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
	case "down", "j":
		if l.cursor < len(l.sessions)-1 {
			l.cursor++
			l.ensureVisible()
		}
	case "home", "g":
		l.cursor = 0
		l.offset = 0
	case "end", "G":
		l.cursor = max(0, len(l.sessions)-1)
		l.ensureVisible()
	case "enter":
		if selected := l.Selected(); selected != nil && selected.ID != l.current {
			return l, util.CmdHandler(SessionSelectedMsg{SessionID: selected.ID})
		}
	case "n":
		return l, util.CmdHandler(NewSessionMsg{})
	}
	return l, nil
}

func (l *SessionList) ensureVisible() {
	rows := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	} else if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
}

// Each session takes 2 lines (title + meta).
func (l *SessionList) visibleRows() int {
	return max(1, l.height/2)
}

// View renders the list.
func (l *SessionList) View() string {
	t := styles.CurrentTheme()

	if len(l.sessions) == 0 {
		return t.S().Muted.Render("No sessions yet.")
	}

	end := min(l.offset+l.visibleRows(), len(l.sessions))
	rows := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		rows = append(rows, l.renderSession(l.sessions[i], i == l.cursor))
	}
	return strings.Join(rows, "\n")
}

func (l *SessionList) renderSession(sess *session.Session, selected bool) string {
	t := styles.CurrentTheme()

	marker := "  "
	titleStyle := t.S().Text
	switch {
	case selected && l.focused:
		marker = "> "
		titleStyle = t.S().Selected
	case sess.ID == l.current:
		marker = "• "
		titleStyle = t.S().Primary
	}

	meta := fmt.Sprintf("%d msgs · %s", sess.MessageCount, formatRelativeTime(sess.UpdatedAt))
	return titleStyle.Render(marker+TruncateTitle(sess.Title)) + "\n" + t.S().Muted.Render("  "+meta)
}

// TruncateTitle shortens a title to MaxTitleGraphemes user-perceived
// characters, appending "..." when cut.
func TruncateTitle(title string) string {
	title = strings.ReplaceAll(title, "\n", " ")
	if uniseg.GraphemeClusterCount(title) <= MaxTitleGraphemes {
		return title
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(title)
	for n := 0; n < MaxTitleGraphemes && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return b.String() + "..."
}

// formatRelativeTime formats a time as a relative string.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		if mins := int(diff.Minutes()); mins > 1 {
			return fmt.Sprintf("%d mins ago", mins)
		}
		return "1 min ago"
	case diff < 24*time.Hour:
		if hours := int(diff.Hours()); hours > 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	case diff < 48*time.Hour:
		return "yesterday"
	default:
		return t.Format("Jan 2")
	}
}
