package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.screen {
	case ScreenChecking:
		// Never render protected content from a cached token
		body := m.spinner.View() + " Checking session..."
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	case ScreenLogin:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderLogin())
	}

	header := m.renderHeader()
	body := m.renderList()
	statusBar := m.renderStatusBar()

	switch m.mode {
	case ModeSearch:
		body = m.overlay(m.renderSearchModal())
	case ModeConfirm:
		body = m.overlay(m.renderConfirmModal())
	case ModeHelp:
		body = m.overlay(m.renderHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) overlay(modal string) string {
	return lipgloss.Place(
		m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderLogin() string {
	s := m.styles
	width := 44

	var b strings.Builder
	b.WriteString(s.Header.Render("kudos admin") + "\n")
	b.WriteString(s.Muted.Render("Sign in to manage projects and testimonials") + "\n\n")
	b.WriteString("Username\n" + m.login.username.View() + "\n\n")
	b.WriteString("Password\n" + m.login.password.View() + "\n\n")

	if m.login.submitting {
		b.WriteString(m.spinner.View() + " Signing in...\n\n")
	} else if m.login.err != "" {
		b.WriteString(s.Error.Render(truncate(m.login.err, width-6)) + "\n\n")
	}
	b.WriteString(s.Help.Render("tab: switch field  enter: sign in  esc: quit"))

	return s.Modal.Width(width).Render(b.String())
}

func (m Model) renderHeader() string {
	s := m.styles

	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		if m.loading[t] {
			label += " " + m.spinner.View()
		}
		if t == m.tab {
			tabs = append(tabs, s.TabActive.Render(label))
		} else {
			tabs = append(tabs, s.Tab.Render(label))
		}
	}

	left := s.Header.Render("kudos") + strings.Join(tabs, "")
	right := s.Muted.Render(fmt.Sprintf("%s · %s", displayName(m.session.State().Admin), m.theme.Theme()))
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderList() string {
	s := m.styles
	width := max(20, m.width-4)
	height := max(3, m.height-4)

	var rows []string
	var empty string
	switch m.tab {
	case TabProjects:
		for i, p := range m.projects.Visible() {
			rows = append(rows, m.row(i, m.projectLine(p, width)))
		}
		empty = "No projects yet. Create one with 'kudos project new'."
	case TabTestimonials:
		for i, t := range m.testimonials.Visible() {
			rows = append(rows, m.row(i, m.testimonialLine(t, width)))
		}
		empty = "No testimonials match."
	default:
		for i, t := range m.tokens.Visible() {
			rows = append(rows, m.row(i, m.tokenLine(t, width)))
		}
		empty = "No invite tokens. Select a project and press n."
	}

	var b strings.Builder
	b.WriteString(m.renderCriteria() + "\n\n")
	if len(rows) == 0 {
		if m.loading[m.tab] {
			b.WriteString(m.spinner.View() + " Loading...")
		} else {
			b.WriteString(s.Muted.Render("  " + empty))
		}
	} else {
		b.WriteString(strings.Join(rows, "\n"))
	}
	b.WriteString("\n\n" + m.renderPagination())

	return s.List.Width(width).Height(height).Render(b.String())
}

func (m Model) row(i int, line string) string {
	if i == m.cursor[m.tab] {
		return m.styles.ItemActive.Render("❯ " + line)
	}
	return m.styles.Item.Render("  " + line)
}

func (m Model) projectLine(p model.Project, width int) string {
	s := m.styles
	status := s.ProjectStatus(p.Status).Render(fmt.Sprintf("%-9s", p.Status))
	count := s.Muted.Render(fmt.Sprintf("%d reviews", p.TestimonialCount))
	name := truncate(p.Name, max(10, width/3))
	client := truncate(p.ClientName, max(10, width/4))
	return fmt.Sprintf("%-*s %-*s %s %s", max(10, width/3), name, max(10, width/4), client, status, count)
}

func (m Model) testimonialLine(t model.Testimonial, width int) string {
	s := m.styles
	flags := ""
	if t.IsFeatured {
		flags += s.Featured.Render("★ featured ")
	}
	if t.IsPublished {
		flags += s.Published.Render("published")
	} else {
		flags += s.Muted.Render("draft")
	}
	title := truncate(t.Title, max(10, width/3))
	who := truncate(t.ClientName+" · "+t.ProjectName, max(10, width/4))
	return fmt.Sprintf("%s %-*s %-*s %s", s.FormatRating(t.Rating), max(10, width/3), title, max(10, width/4), who, flags)
}

func (m Model) tokenLine(t model.InviteToken, width int) string {
	s := m.styles
	status := s.TokenStatus(t.Status).Render(fmt.Sprintf("%-8s", t.Status))
	note := truncate(model.Deref(t.Note), max(8, width/5))
	expires := s.Muted.Render("expires " + t.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return fmt.Sprintf("%s %-12s %-*s %-*s %s", status, truncate(t.Token, 12),
		max(10, width/4), truncate(t.ProjectName, max(10, width/4)), max(8, width/5), note, expires)
}

// renderCriteria shows the active search, filters and sort of the current tab
func (m Model) renderCriteria() string {
	s := m.styles
	l := m.list()

	parts := []string{s.Header.Render(m.tab.String())}
	if q := l.Query(); q != "" {
		parts = append(parts, "search: "+q)
	}
	parts = append(parts, "status: "+orAll(l.Filter(listview.FilterStatus)))
	if m.tab == TabTestimonials {
		rating := l.Filter(listview.FilterRating)
		if rating == "" {
			parts = append(parts, "rating: all")
		} else {
			parts = append(parts, "rating: "+rating+"+")
		}
	}
	if k := l.SortKey(); k != "" {
		parts = append(parts, "sort: "+k)
	}
	return parts[0] + " " + s.Muted.Render(strings.Join(parts[1:], "  "))
}

func (m Model) renderPagination() string {
	var start, end, total int
	var pages []listview.PageItem
	var nav listview.Nav
	switch m.tab {
	case TabProjects:
		start, end, total = m.projects.Range()
		pages, nav = m.projects.PageNumbers(), m.projects.Nav()
	case TabTestimonials:
		start, end, total = m.testimonials.Range()
		pages, nav = m.testimonials.PageNumbers(), m.testimonials.Nav()
	default:
		start, end, total = m.tokens.Range()
		pages, nav = m.tokens.PageNumbers(), m.tokens.Nav()
	}
	return renderPager(m.styles, start, end, total, pages, nav)
}

func renderPager(s Styles, start, end, total int, pages []listview.PageItem, nav listview.Nav) string {
	control := func(label string, enabled bool) string {
		if enabled {
			return label
		}
		return s.Muted.Render(label)
	}

	parts := []string{control("«", nav.First), control("‹", nav.Prev)}
	for _, p := range pages {
		switch {
		case p.Ellipsis:
			parts = append(parts, s.Muted.Render("…"))
		case p.Current:
			parts = append(parts, s.PageCurrent.Render(fmt.Sprintf("[%d]", p.Number)))
		default:
			parts = append(parts, fmt.Sprintf("%d", p.Number))
		}
	}
	parts = append(parts, control("›", nav.Next), control("»", nav.Last))

	summary := s.Muted.Render(fmt.Sprintf("Showing %d–%d of %d", start, end, total))
	return summary + "   " + strings.Join(parts, " ")
}

func (m Model) renderStatusBar() string {
	s := m.styles
	hints := "tab:switch  /:search  f:status  s:sort  [ ]:page  d:delete  r:reload  ?:help  q:quit"
	switch m.tab {
	case TabProjects:
		hints = "n:invite link  " + hints
	case TabTestimonials:
		hints = "F:feature  P:publish  m:rating  " + hints
	case TabTokens:
		hints = "x:revoke  " + hints
	}

	left := m.message
	if m.busy || m.generating {
		left = m.spinner.View() + " Working... " + left
	}
	content := left
	if content != "" {
		content += "  "
	}
	content += s.Help.Render(hints)
	return s.StatusBar.Width(m.width).Render(content)
}

func (m Model) renderSearchModal() string {
	s := m.styles
	content := s.Header.Render("Search "+strings.ToLower(m.tab.String())) + "\n\n"
	content += "/" + m.search.View() + "\n\n"
	_, _, total := m.rangeOfTab()
	content += s.Muted.Render(fmt.Sprintf("%d matches", total)) + "\n\n"
	content += s.Help.Render("enter: keep  esc: clear")
	return s.Modal.Width(50).Render(content)
}

func (m Model) rangeOfTab() (int, int, int) {
	switch m.tab {
	case TabProjects:
		return m.projects.Range()
	case TabTestimonials:
		return m.testimonials.Range()
	default:
		return m.tokens.Range()
	}
}

func (m Model) renderConfirmModal() string {
	s := m.styles
	label := ""
	if m.confirm != nil {
		label = m.confirm.label
	}
	content := s.Danger.Render("Delete "+label+"?") + "\n\n"
	if m.confirm != nil && m.confirm.tab == TabProjects {
		content += s.Muted.Render("Its testimonials and invite tokens go with it.") + "\n\n"
	}
	content += s.Help.Render("y: delete  any other key: cancel")
	return s.Modal.Width(50).Render(content)
}

func (m Model) renderHelp() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Header.Render("Keyboard Shortcuts") + "\n\n")
	for _, k := range helpBindings() {
		h := k.Help()
		b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
	}
	b.WriteString("\n" + s.Help.Render("Press any key to close"))
	return s.Modal.Render(b.String())
}
