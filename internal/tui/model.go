package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"questionbank/internal/domain"
	"questionbank/internal/question"
)

// Verdict is the grading outcome of one answered question.
type Verdict int

const (
	Ungraded Verdict = iota // not answered, or no known correct answer
	Correct
	Wrong
)

type answer struct {
	submitted bool
	choice    int
	text      string
	revealed  bool
	verdict   Verdict
}

// Model is the Bubble Tea model for an interactive quiz over one question set.
type Model struct {
	set      domain.QuestionSet
	input    textinput.Model
	viewport viewport.Model
	current  int
	cursor   []int
	answers  []answer
	status   string
	ready    bool
}

// New creates a quiz over set, starting at its first question.
func New(set domain.QuestionSet) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your answer and press Enter"
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{
		set:      set,
		input:    ti,
		viewport: vp,
		cursor:   make([]int, len(set.Questions)),
		answers:  make([]answer, len(set.Questions)),
		status:   helpText,
	}
	m.syncInput()
	return m
}

const helpText = "↑/↓ choose • enter answer • ctrl+r reveal • tab/shift+tab next/prev • esc quit"

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around question and answer boxes
		_, qh := questionBoxStyle.GetFrameSize()
		_, ah := answerBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ah + 1 + 1 // header + progress, status, input box, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-qh)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if len(m.set.Questions) == 0 {
			return m, nil
		}
		typing := m.isOpenEnded()
		switch msg.String() {
		case "tab", "right":
			m.move(1)
			return m, nil
		case "shift+tab", "left":
			m.move(-1)
			return m, nil
		case "ctrl+r":
			m.answers[m.current].revealed = true
			m.refresh()
			return m, nil
		case "enter":
			m.submit()
			m.refresh()
			return m, nil
		case "up":
			if !typing {
				m.moveCursor(-1)
				return m, nil
			}
		case "down":
			if !typing {
				m.moveCursor(1)
				return m, nil
			}
		case "n":
			if !typing {
				m.move(1)
				return m, nil
			}
		case "p":
			if !typing {
				m.move(-1)
				return m, nil
			}
		case "a":
			if !typing {
				m.answers[m.current].revealed = true
				m.refresh()
				return m, nil
			}
		case "q":
			if !typing {
				return m, tea.Quit
			}
		}
		if !typing {
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the quiz layout and current question.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Quiz"
	if m.set.Topic != "" {
		title += ": " + m.set.Topic
	}
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%s)", title, m.set.Type))
	correct, graded := m.Score()
	progress := mutedStyle.Render(fmt.Sprintf("Question %d/%d • score %d/%d", min(m.current+1, len(m.set.Questions)), len(m.set.Questions), correct, graded))
	body := questionBoxStyle.Render(m.viewport.View())
	out := header + "\n" + progress + "\n" + body
	if m.isOpenEnded() {
		out += "\n" + answerBoxStyle.Render(m.input.View())
	}
	return out + "\n" + statusStyle.Render(m.status)
}

// Score returns the number of correct answers and of graded answers so far.
func (m Model) Score() (correct, graded int) {
	for _, a := range m.answers {
		switch a.verdict {
		case Correct:
			correct++
			graded++
		case Wrong:
			graded++
		}
	}
	return correct, graded
}

// Verdicts returns the grading outcome per question, in set order.
func (m Model) Verdicts() []Verdict {
	out := make([]Verdict, len(m.answers))
	for i, a := range m.answers {
		out[i] = a.verdict
	}
	return out
}

func (m Model) isOpenEnded() bool {
	if len(m.set.Questions) == 0 {
		return false
	}
	_, ok := m.set.Questions[m.current].(*question.OpenEndedQuestion)
	return ok
}

func (m *Model) move(delta int) {
	n := len(m.set.Questions)
	m.current = (m.current + delta + n) % n
	m.syncInput()
	m.refresh()
}

func (m *Model) moveCursor(delta int) {
	n := len(options(m.set.Questions[m.current]))
	if n == 0 {
		return
	}
	m.cursor[m.current] = (m.cursor[m.current] + delta + n) % n
	m.refresh()
}

// syncInput focuses the text input on open-ended questions and restores any
// answer typed there before.
func (m *Model) syncInput() {
	if m.isOpenEnded() {
		m.input.SetValue(m.answers[m.current].text)
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m *Model) submit() {
	q := m.set.Questions[m.current]
	a := &m.answers[m.current]
	switch q := q.(type) {
	case *question.MultipleChoiceQuestion:
		if len(q.Options) == 0 {
			return
		}
		a.choice = m.cursor[m.current]
		a.verdict = Ungraded
		if q.CorrectAnswer != nil {
			a.verdict = grade(q.Options[a.choice] == *q.CorrectAnswer)
		}
	case *question.TrueFalseQuestion:
		a.choice = m.cursor[m.current]
		a.verdict = Ungraded
		if want, ok := q.CorrectAnswer.Bool(); ok {
			a.verdict = grade((a.choice == 0) == want)
		}
	case *question.OpenEndedQuestion:
		a.text = strings.TrimSpace(m.input.Value())
		if a.text == "" {
			return
		}
	}
	a.submitted = true
	a.revealed = true
	switch a.verdict {
	case Correct:
		m.status = "Correct!"
	case Wrong:
		m.status = "Not quite."
	default:
		m.status = "Answer recorded."
	}
}

func grade(ok bool) Verdict {
	if ok {
		return Correct
	}
	return Wrong
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderCurrentQuestion())
}

func options(q question.Question) []string {
	switch q := q.(type) {
	case *question.MultipleChoiceQuestion:
		return q.Options
	case *question.TrueFalseQuestion:
		return q.Options
	}
	return nil
}

func (m Model) renderCurrentQuestion() string {
	if len(m.set.Questions) == 0 {
		return "This set has no questions."
	}
	q := m.set.Questions[m.current]
	a := m.answers[m.current]

	var b strings.Builder
	b.WriteString(questionStyle.Render(fmt.Sprintf("%d. %s", q.ID(), q.Prompt())))
	b.WriteString("\n\n")
	for i, opt := range options(q) {
		marker := "  "
		if i == m.cursor[m.current] {
			marker = "> "
		}
		line := fmt.Sprintf("%s%c) %s", marker, 'A'+i, opt)
		if a.submitted && i == a.choice {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if a.revealed {
		b.WriteString("\n" + revealText(q, a))
	}
	return b.String()
}

func revealText(q question.Question, a answer) string {
	switch q := q.(type) {
	case *question.MultipleChoiceQuestion:
		if q.CorrectAnswer == nil {
			return mutedStyle.Render("No answer was given for this question.")
		}
		return "Answer: " + highlightStyle.Render(*q.CorrectAnswer)
	case *question.TrueFalseQuestion:
		want, ok := q.CorrectAnswer.Bool()
		if !ok {
			return mutedStyle.Render("No answer was given for this question.")
		}
		label := question.TrueFalseOptions[1]
		if want {
			label = question.TrueFalseOptions[0]
		}
		return "Answer: " + highlightStyle.Render(label)
	case *question.OpenEndedQuestion:
		if q.Answer == "" {
			return mutedStyle.Render("No model answer was given for this question.")
		}
		return "Model answer: " + highlightBestSentence(q.Answer, a.text)
	}
	return ""
}

var (
	questionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	highlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
