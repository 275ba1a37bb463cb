package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/scoring"
)

// Lines per lead item in the list view (title + subtitle + blank separator).
const leadItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	leadTitleStyle = lipgloss.NewStyle().
			Bold(true)

	leadSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedLeadTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedLeadSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// ExportFunc writes the qualified leads and returns the file path.
type ExportFunc func() (string, error)

// ExplainFunc itemizes a job's pain score.
type ExplainFunc func(model.JobRecord) scoring.Breakdown

// exportDoneMsg is sent when an async export completes.
type exportDoneMsg struct {
	path string
	err  error
}

type reviewModel struct {
	qualified     []*model.Lead
	rejected      []*model.Lead
	criteria      model.Criteria
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=qualified, 1=rejected
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view            viewState
	detailLead      *model.Lead
	detailViewport  viewport.Model
	showDescription bool

	explain ExplainFunc
	export  ExportFunc

	exporting    bool
	exportStatus string
	exportErr    bool
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.exportStatus = fmt.Sprintf("export failed: %v", msg.err)
			m.exportErr = true
		} else {
			m.exportStatus = "exported to " + msg.path
			m.exportErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	case "e":
		return m.startExport()
	}

	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detailLead.Job.URL)
		return m, nil
	case "r":
		if m.detailLead.Job.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "e":
		return m.startExport()
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) startExport() (tea.Model, tea.Cmd) {
	if m.export == nil || m.exporting {
		return m, nil
	}
	m.exporting = true
	m.exportStatus = "exporting..."
	m.exportErr = false
	export := m.export
	return m, func() tea.Msg {
		path, err := export()
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *reviewModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.qualified)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.rejected)-1, 0))
	}
}

func (m *reviewModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * leadItemHeight
	cursorBottom := cursorTop + leadItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	leads := m.activeLeads()
	if len(leads) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailLead = leads[m.activeCursor()]
	m.showDescription = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.leftViewport.SetContent(renderLeads(m.qualified, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderLeads(m.rejected, m.rightCursor, m.activePane == 1))
}

func (m reviewModel) activeLeads() []*model.Lead {
	if m.activePane == 0 {
		return m.qualified
	}
	return m.rejected
}

func (m reviewModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) statusLine(keys string) string {
	if m.exportStatus == "" {
		return keys
	}
	st := bodyStyle
	if m.exportErr {
		st = errorStyle
	}
	return keys + "   " + st.Render(m.exportStatus)
}

func (m reviewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" Qualified (%d)", len(m.qualified))
	rightHeader := fmt.Sprintf(" Rejected (%d)", len(m.rejected))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Render(m.leftViewport.View()), " ", rightBorder.Render(m.rightViewport.View()))

	keys := " ←/→/Tab switch  ↑/↓ cursor  Enter detail  e export  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(m.statusLine(keys))

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Lead Details")
	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	keys := " o open URL  esc/backspace back  ↑/↓ scroll  e export  q quit"
	if m.detailLead.Job.Description != "" {
		keys = " o open URL  r desc  esc/backspace back  ↑/↓ scroll  e export  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(m.statusLine(keys))

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	l := m.detailLead
	j := l.Job
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.CompanyName)
	addField("Domain", l.Domain)
	addField("Location", j.Location)
	addField("Source", j.Source)
	addField("Days Open", strconv.Itoa(j.DaysOpen))
	addField("Pain Score", strconv.Itoa(j.PainScore))
	addField("Job URL", j.URL)

	if reason := l.Shortfall(m.criteria); reason != "" {
		b.WriteByte('\n')
		b.WriteString(warnStyle.Render("✗ "+reason) + "\n")
	}

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if m.explain != nil {
		bd := m.explain(j)
		b.WriteByte('\n')
		b.WriteString(divider("── Score ") + "\n\n")
		addField("base", strconv.Itoa(bd.Base))
		for _, c := range bd.Contributions {
			addField(c.Rule, fmt.Sprintf("%+d", c.Weight))
		}
		addField("total", strconv.Itoa(bd.Total))
	}

	b.WriteByte('\n')
	b.WriteString(divider(fmt.Sprintf("── Contacts (%d) ", l.ContactCount())) + "\n\n")
	contacts := l.Contacts()
	if len(contacts) == 0 {
		b.WriteString(hintStyle.Render("  no contacts found") + "\n")
	}
	for _, c := range contacts {
		b.WriteString(leadTitleStyle.Render("  "+c.FullName()) + leadSubtitleStyle.Render("  "+c.Title+" · "+string(c.Seniority)) + "\n")
		reach := c.Email
		if c.Phone != "" {
			reach = strings.TrimSpace(reach + "  " + c.Phone)
		}
		b.WriteString(bodyStyle.Render("    "+reach) + "\n")
	}

	if l.Summary != "" {
		b.WriteByte('\n')
		label := "── Summary "
		if l.SummaryFallback {
			label = "── Summary (template) "
		}
		b.WriteString(divider(label) + "\n\n")
		b.WriteString(bodyStyle.Render(l.Summary) + "\n")
	}

	if j.Description != "" {
		b.WriteByte('\n')
		if m.showDescription {
			b.WriteString(divider("── Job Description ") + "\n\n")
			b.WriteString(bodyStyle.Render(wordWrap(j.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r to read job description") + "\n")
		}
	}

	return b.String()
}

func renderLeads(leads []*model.Lead, cursor int, isActive bool) string {
	if len(leads) == 0 {
		return "  (no leads)"
	}

	var b strings.Builder
	for i, l := range leads {
		isSelected := isActive && i == cursor

		titleSt := leadTitleStyle
		subtitleSt := leadSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedLeadTitleStyle
			subtitleSt = selectedLeadSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(l.Job.CompanyName + ": " + l.Job.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("score %d · %d contacts · %dd open", l.Job.PainScore, l.ContactCount(), l.Job.DaysOpen)))
		b.WriteByte('\n')

		if i < len(leads)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// sortByScore orders leads by pain score, highest first. Ties keep their
// pipeline order.
func sortByScore(leads []*model.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].Job.PainScore > leads[j].Job.PainScore
	})
}

func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Options configure the review screen. Explain and Export may be nil.
type Options struct {
	Criteria model.Criteria
	Explain  ExplainFunc
	Export   ExportFunc
}

func newReviewModel(qualified, rejected []*model.Lead, opts Options) reviewModel {
	qualified = append([]*model.Lead(nil), qualified...)
	rejected = append([]*model.Lead(nil), rejected...)
	sortByScore(qualified)
	sortByScore(rejected)
	return reviewModel{
		qualified: qualified,
		rejected:  rejected,
		criteria:  opts.Criteria,
		explain:   opts.Explain,
		export:    opts.Export,
	}
}

// Run launches the split-pane review screen over a collected batch.
func Run(qualified, rejected []*model.Lead, opts Options) error {
	p := tea.NewProgram(newReviewModel(qualified, rejected, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
