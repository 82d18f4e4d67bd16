package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionbank/internal/domain"
	"questionbank/internal/question"
)

func strPtr(s string) *string { return &s }

func mixedSet() domain.QuestionSet {
	return domain.QuestionSet{
		Topic: "Cells",
		Type:  question.MultipleChoice,
		Questions: []question.Question{
			&question.MultipleChoiceQuestion{Number: 1, Text: "Powerhouse?", Options: []string{"Nucleus", "Mitochondria"}, CorrectAnswer: strPtr("Mitochondria")},
			&question.TrueFalseQuestion{Number: 2, Text: "Cells divide.", Options: question.TrueFalseOptions, CorrectAnswer: question.True},
			&question.OpenEndedQuestion{Number: 3, Text: "Explain ATP.", Answer: "ATP stores energy. It is made in mitochondria."},
		},
	}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }
func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func size(w, h int) tea.WindowSizeMsg { return tea.WindowSizeMsg{Width: w, Height: h} }

func TestModel_GradesChoices(t *testing.T) {
	m := send(t, New(mixedSet()), size(80, 30))

	// pick the second option of the multiple choice question
	m = send(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	assert.Equal(t, []Verdict{Correct, Ungraded, Ungraded}, m.Verdicts())
	assert.Equal(t, "Correct!", m.status)

	// answer False on a true statement
	m = send(t, m, runes("n"), key(tea.KeyDown), key(tea.KeyEnter))
	assert.Equal(t, Wrong, m.Verdicts()[1])

	correct, graded := m.Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, graded)
	assert.Contains(t, m.View(), "score 1/2")
}

func TestModel_OpenEndedTyping(t *testing.T) {
	m := send(t, New(mixedSet()), size(80, 30))
	m = send(t, m, key(tea.KeyShiftTab))
	require.True(t, m.isOpenEnded())

	// letters that are shortcuts elsewhere must reach the input here
	m = send(t, m, runes("n"), runes("a"), runes("p"))
	assert.Equal(t, "nap", m.input.Value())
	assert.Equal(t, 2, m.current)

	m = send(t, m, key(tea.KeyEnter))
	assert.True(t, m.answers[2].submitted)
	assert.Equal(t, Ungraded, m.Verdicts()[2])
	assert.Contains(t, m.renderCurrentQuestion(), "Model answer:")

	// the typed answer is restored when coming back
	m = send(t, m, key(tea.KeyTab), key(tea.KeyShiftTab))
	assert.Equal(t, "nap", m.input.Value())
}

func TestModel_Reveal(t *testing.T) {
	m := send(t, New(mixedSet()), size(80, 30))
	assert.NotContains(t, m.renderCurrentQuestion(), "Answer: ")

	m = send(t, m, runes("a"))
	assert.Contains(t, m.renderCurrentQuestion(), "Mitochondria")
	assert.True(t, m.answers[0].revealed)
	assert.Equal(t, Ungraded, m.Verdicts()[0])

	m = send(t, m, key(tea.KeyRight))
	m = send(t, m, key(tea.KeyCtrlR))
	assert.Contains(t, m.renderCurrentQuestion(), "True")
}

func TestModel_Navigation(t *testing.T) {
	m := send(t, New(mixedSet()), size(80, 30))
	m = send(t, m, runes("p"))
	assert.Equal(t, 2, m.current)
	m = send(t, m, key(tea.KeyTab))
	assert.Equal(t, 0, m.current)

	m = send(t, m, key(tea.KeyUp))
	assert.Equal(t, 1, m.cursor[0])

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_UnansweredQuestions(t *testing.T) {
	set := domain.QuestionSet{Type: question.MultipleChoice, Questions: []question.Question{
		&question.MultipleChoiceQuestion{Number: 1, Text: "No options?", Options: []string{}},
		&question.TrueFalseQuestion{Number: 2, Text: "Unknown.", Options: question.TrueFalseOptions},
	}}
	m := send(t, New(set), size(80, 30), key(tea.KeyEnter))
	assert.False(t, m.answers[0].submitted)

	m = send(t, m, key(tea.KeyTab), key(tea.KeyEnter))
	assert.True(t, m.answers[1].submitted)
	assert.Equal(t, Ungraded, m.Verdicts()[1])
	assert.Contains(t, m.renderCurrentQuestion(), "No answer was given")
}

func TestModel_EmptySet(t *testing.T) {
	m := send(t, New(domain.QuestionSet{}), size(80, 30), key(tea.KeyEnter), key(tea.KeyTab))
	assert.Contains(t, m.View(), "This set has no questions.")
}

func TestHighlightBestSentence(t *testing.T) {
	text := "ATP stores energy. It is made in mitochondria."
	assert.Equal(t, text, highlightBestSentence(text, ""))
	assert.Equal(t, text, highlightBestSentence(text, "photosynthesis"))
	out := highlightBestSentence(text, "mitochondria")
	assert.Contains(t, out, "ATP stores energy.")
	assert.Contains(t, out, "mitochondria")
}
